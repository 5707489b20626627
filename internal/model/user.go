package model

// User is an entry of the read-only user directory. The ReportsTo edges
// form the organisational tree.
type User struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Role         Role   `yaml:"role" json:"role"`
	ReportsTo    string `yaml:"reports_to,omitempty" json:"reports_to,omitempty"`
	PasswordHash string `yaml:"password_hash,omitempty" json:"-"` // bcrypt
}
