package dstelemetry

import (
	"crypto/sha512"
	"encoding/hex"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	yaml "gopkg.in/ghodss/yaml.v1"
)

// MaskToken replaces command argument values that are not part of the known
// vocabulary.
const MaskToken = "*****"

// MissingIdentity is used when no identity could be determined at all.
const MissingIdentity = "unknown"

// Hash returns the anonymized form of an identifying string. The raw value
// never leaves the process.
func Hash(value string) string {
	sum := sha512.Sum512([]byte(value))
	return hex.EncodeToString(sum[:])
}

// HashedIdentity returns a stable anonymized identity for this user and
// machine, a hash of hostname and username. If neither can be determined it
// returns MissingIdentity.
func HashedIdentity() string {
	hostname, _ := os.Hostname()
	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	if hostname == "" && username == "" {
		return MissingIdentity
	}
	return Hash(hostname + "|" + username)
}

type identityFile struct {
	UUID string `json:"uuid"`
}

// GetOrCreateUserID returns a random per-user identifier, generating and
// persisting one under the user's config directory on first use. The
// identifier carries no information about the user; it only allows counting
// distinct installations.
func GetOrCreateUserID() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return MissingIdentity
	}
	path := filepath.Join(dir, "datacraft", "telemetry.yaml")
	if data, err := os.ReadFile(path); err == nil {
		var f identityFile
		if err := yaml.Unmarshal(data, &f); err == nil && f.UUID != "" {
			return f.UUID
		}
	}
	id := uuid.NewString()
	if data, err := yaml.Marshal(identityFile{UUID: id}); err == nil {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			_ = os.WriteFile(path, data, 0o600)
		}
	}
	return id
}

// MaskCommandArgs rewrites a command line so that only tokens in the known
// vocabulary survive. Flag names are kept; flag values given with "=" and
// any free-form positional values are replaced with MaskToken. Anything
// after a bare "--" is masked wholesale.
func MaskCommandArgs(args []string, vocabulary []string) []string {
	known := make(map[string]struct{}, len(vocabulary))
	for _, v := range vocabulary {
		known[v] = struct{}{}
	}
	masked := make([]string, 0, len(args))
	passthroughDone := false
	for _, arg := range args {
		switch {
		case passthroughDone:
			masked = append(masked, MaskToken)
		case arg == "--":
			passthroughDone = true
			masked = append(masked, arg)
		case strings.HasPrefix(arg, "-"):
			name, _, hasValue := strings.Cut(arg, "=")
			if _, ok := known[name]; !ok {
				masked = append(masked, MaskToken)
			} else if hasValue {
				masked = append(masked, name+"="+MaskToken)
			} else {
				masked = append(masked, name)
			}
		default:
			if _, ok := known[arg]; ok {
				masked = append(masked, arg)
			} else {
				masked = append(masked, MaskToken)
			}
		}
	}
	return masked
}
