package model

import "fmt"

// AppKey identifies an App by its name and version. Both fields must be
// non-empty; equality is structural so AppKey is safe to use as a map key.
type AppKey struct {
	Name    string
	Version string
}

func (k AppKey) String() string {
	return fmt.Sprintf("%s-%s", k.Name, k.Version)
}

func (k AppKey) IsZero() bool {
	return k.Name == "" && k.Version == ""
}
