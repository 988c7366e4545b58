package paths

import (
	"os"
	"os/user"
	"path/filepath"
	"strconv"
)

const appName = "pira"

// HomeDir returns the invoking user's home directory. Under sudo this is
// SUDO_USER's home rather than root's, so the database and logs stay in one
// place whatever the privilege level. Privileged runs matter here because raw
// ICMP sockets need root.
func HomeDir() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u.HomeDir, nil
		}
	}
	return os.UserHomeDir()
}

// RealUser returns the UID and GID from SUDO_UID / SUDO_GID. ok is false
// when not running under sudo.
func RealUser() (uid, gid int, ok bool) {
	sudoUID := os.Getenv("SUDO_UID")
	if sudoUID == "" {
		return 0, 0, false
	}
	u, err := strconv.Atoi(sudoUID)
	if err != nil {
		return 0, 0, false
	}
	g, _ := strconv.Atoi(os.Getenv("SUDO_GID"))
	return u, g, true
}

// ChownToRealUser hands path back to the sudo invoker. No-op otherwise.
func ChownToRealUser(path string) {
	if uid, gid, ok := RealUser(); ok {
		_ = os.Chown(path, uid, gid)
	}
}

// appDir creates home/<parts...>/pira and returns it.
func appDir(parts ...string) (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(append(append([]string{home}, parts...), appName)...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ChownToRealUser(dir)
	return dir, nil
}

// CacheDir returns ~/.cache/pira, where logs are written.
func CacheDir() (string, error) { return appDir(".cache") }

// DataDir returns ~/.local/share/pira, where the database lives.
func DataDir() (string, error) { return appDir(".local", "share") }

// DBPath returns the default database location.
func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pira.db"), nil
}
