// Package device identifies the machine the client runs on so the session key
// can be bound to it.
package device

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Fingerprint returns a stable identifier for the current machine. It prefers
// hardware UUIDs and falls back to the machine id and then the hostname, so it
// never fails on an ordinary workstation.
func Fingerprint() (string, error) {
	ids, err := hardwareIDs()
	if err == nil && len(ids) > 0 {
		return ids[0], nil
	}
	if id := machineID(); id != "" {
		return id, nil
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "", errors.New("device: no fingerprint available")
	}
	return "host:" + host, nil
}

func hardwareIDs() ([]string, error) {
	switch runtime.GOOS {
	case "darwin":
		return macOSUUID()
	case "linux":
		return linuxUUID()
	case "windows":
		return windowsUUID()
	default:
		return nil, errors.New("unsupported platform: " + runtime.GOOS)
	}
}

func macOSUUID() ([]string, error) {
	out, err := exec.Command("ioreg", "-rd1", "-c", "IOPlatformExpertDevice").Output()
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, "IOPlatformUUID") {
			parts := strings.Split(line, "\"")
			if len(parts) >= 4 {
				ids = append(ids, parts[3])
			}
		}
	}
	if len(ids) == 0 {
		return nil, errors.New("no IOPlatformUUID found")
	}
	return ids, nil
}

func linuxUUID() ([]string, error) {
	// product_uuid is root-only on most distributions.
	if b, err := os.ReadFile("/sys/class/dmi/id/product_uuid"); err == nil {
		if id := strings.TrimSpace(string(b)); id != "" {
			return []string{id}, nil
		}
	}
	if b, err := os.ReadFile("/proc/cpuinfo"); err == nil {
		for _, line := range strings.Split(string(b), "\n") {
			if !strings.HasPrefix(line, "Serial") {
				continue
			}
			parts := strings.Split(line, ":")
			if len(parts) == 2 {
				if id := strings.TrimSpace(parts[1]); id != "" {
					return []string{id}, nil
				}
			}
		}
	}
	return nil, errors.New("no hardware UUID found on Linux")
}

func windowsUUID() ([]string, error) {
	for _, args := range [][]string{{"csproduct", "get", "UUID"}, {"cpu", "get", "ProcessorId"}} {
		out, err := exec.Command("wmic", args...).Output()
		if err != nil {
			continue
		}
		for _, line := range bytes.Split(out, []byte("\n")) {
			s := strings.TrimSpace(string(line))
			if s != "" && !strings.EqualFold(s, args[2]) {
				return []string{s}, nil
			}
		}
	}
	return nil, errors.New("no hardware UUID found on Windows")
}

func machineID() string {
	for _, p := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		if b, err := os.ReadFile(p); err == nil {
			if id := strings.TrimSpace(string(b)); id != "" {
				return id
			}
		}
	}
	return ""
}
