package gateway

import (
	"context"
	"fmt"
	"os"

	"brewlog/internal/adapters/gateway/cloudinary"
	"brewlog/internal/adapters/gateway/gdrive"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

func NewGateway() (Gateway, error) {
	provider := os.Getenv("MEDIA_GATEWAY")
	if provider == "" {
		provider = "cloudinary"
	}

	switch provider {
	case "cloudinary":
		return cloudinary.NewClient(
			mustEnv("CLOUDINARY_CLOUD_NAME"),
			mustEnv("CLOUDINARY_API_KEY"),
			mustEnv("CLOUDINARY_API_SECRET"),
		)

	case "gdrive":
		return newGDriveGateway()

	default:
		return nil, fmt.Errorf("unknown media gateway: %s", provider)
	}
}

func newGDriveGateway() (Gateway, error) {
	ctx := context.Background()

	clientID := mustEnv("GDRIVE_CLIENT_ID")
	clientSecret := mustEnv("GDRIVE_CLIENT_SECRET")
	refreshToken := mustEnv("GDRIVE_REFRESH_TOKEN")
	folderID := os.Getenv("GDRIVE_FOLDER_ID")

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}

	tok := &oauth2.Token{RefreshToken: refreshToken}
	httpClient := conf.Client(ctx, tok)

	srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}

	return gdrive.NewClient(srv, folderID), nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
