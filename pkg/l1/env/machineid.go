package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID scopes the protected machine ID to this application.
const AppID = "homectl"

// MachineID retrieves the ID identifying the machine, hashed with AppID
// so the raw machine ID is not published. Falls back to the hostname.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil && len(id) > 12 {
		return id[:12]
	}
	glog.Warningf("machine ID unavailable (%v), using hostname", err)
	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}
	return "unknown"
}
