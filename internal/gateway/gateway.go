package gateway

import "brewlog/internal/ports"

// Gateway is the remote media contract used across API and migrator.
// It is an alias to ports.MediaGateway to keep call-sites simple.
type Gateway = ports.MediaGateway
