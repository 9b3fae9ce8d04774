package access

import (
	"fmt"
	"strings"
)

// Level classifies what an action does to the resources it touches.
type Level int

const (
	Unknown Level = iota
	List
	Read
	Write
	PermissionsManagement
	Tagging
)

var names = map[Level]string{
	List:                  "List",
	Read:                  "Read",
	Write:                 "Write",
	PermissionsManagement: "Permissions management",
	Tagging:               "Tagging",
}

// All returns every known level in canonical order.
func All() []Level {
	return []Level{List, Read, Write, PermissionsManagement, Tagging}
}

func (l Level) String() string {
	if n, ok := names[l]; ok {
		return n
	}
	return "Unknown"
}

func (l Level) Valid() bool {
	_, ok := names[l]
	return ok
}

// Parse accepts the AWS documentation spelling as well as compact forms
// such as "permissions-management" or "PermissionsManagement".
func Parse(s string) (Level, error) {
	norm := strings.ToLower(s)
	norm = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(norm)
	switch norm {
	case "list":
		return List, nil
	case "read":
		return Read, nil
	case "write":
		return Write, nil
	case "permissionsmanagement":
		return PermissionsManagement, nil
	case "tagging":
		return Tagging, nil
	}
	return Unknown, fmt.Errorf("unknown access level %q", s)
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("cannot marshal access level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
