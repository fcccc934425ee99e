package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"
)

// GetDeviceID hashes the MAC address of the first active interface into a short
// terminal ID like "HAMA-A1B2C3D4". The gateway sends it with every remote call
// so the service can tell which shop terminal a record came from.
func GetDeviceID() string {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "UNKNOWN-DEVICE"
	}

	var macAddress string
	for _, i := range interfaces {
		if i.Flags&net.FlagUp != 0 && len(i.HardwareAddr) > 0 {
			macAddress = i.HardwareAddr.String()
			break
		}
	}
	if macAddress == "" {
		return "UNKNOWN-DEVICE"
	}

	hash := sha256.Sum256([]byte(macAddress + "HAMA-SALES-SALT"))
	return "HAMA-" + strings.ToUpper(hex.EncodeToString(hash[:])[:8])
}
