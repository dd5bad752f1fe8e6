package domain

type BootstrapData struct {
	AdminEmail     string
	AdminFirstName string
	AdminLastName  string
	AdminPassword  string
	Roles          []RoleDefinition
}

type RoleDefinition struct {
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
	Default     bool     `yaml:"default"`
}
