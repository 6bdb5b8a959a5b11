package taxonomy

import "github.com/freebsdly/ops-console/pkg/access"

// Well-known console paths.
const (
	LoginPath        = "/login"
	RootPath         = "/"
	NoPermissionPath = "/no-permission"
	OverviewPath     = "/workbench/dashboard/overview"
)

// BuiltInModules returns the default module catalog shipped with the
// console. Deployments normally replace it with YAML catalog files; it also
// backs tests and the demo server.
func BuiltInModules() []Module {
	return []Module{
		{
			ID:    "workbench",
			Label: "Workbench",
			Icon:  "desktop",
			Root:  "/workbench",
			Menus: []MenuNode{
				{
					ID:    "dashboard",
					Label: "Dashboard",
					Icon:  "dashboard",
					Children: []MenuNode{
						{ID: "overview", Label: "Overview", Path: OverviewPath},
						{
							ID:      "analysis",
							Label:   "Analysis",
							Path:    "/workbench/dashboard/analysis",
							Require: &access.Requirement{Resource: "analysis", Action: "read"},
						},
					},
				},
				{
					ID:      "alerts",
					Label:   "Alerts",
					Icon:    "bell",
					Path:    "/workbench/alerts",
					Require: &access.Requirement{Resource: "alert", Action: "read"},
				},
			},
		},
		{
			ID:    "configuration",
			Label: "Configuration",
			Icon:  "setting",
			Root:  "/configuration",
			Menus: []MenuNode{
				{
					ID:    "resources",
					Label: "Resources",
					Icon:  "database",
					Path:  "/configuration/resources",
					Children: []MenuNode{
						{
							ID:      "hosts",
							Label:   "Hosts",
							Path:    "/configuration/resources/hosts",
							Require: &access.Requirement{Resource: "configuration", Action: "read"},
						},
						{
							ID:      "services",
							Label:   "Services",
							Path:    "/configuration/resources/services",
							Require: &access.Requirement{Resource: "configuration", Action: "read"},
						},
					},
				},
				{
					ID:      "templates",
					Label:   "Templates",
					Icon:    "copy",
					Path:    "/configuration/templates",
					Require: &access.Requirement{Resource: "configuration", Action: "update"},
				},
			},
		},
		{
			ID:    "system",
			Label: "System",
			Icon:  "tool",
			Root:  "/system",
			Menus: []MenuNode{
				{
					ID:    "iam",
					Label: "Identity",
					Icon:  "team",
					Roles: []string{"ops:admin"},
					Children: []MenuNode{
						{
							ID:      "users",
							Label:   "Users",
							Path:    "/system/iam/users",
							Roles:   []string{"ops:admin"},
							Require: &access.Requirement{Resource: "user", Action: "read"},
						},
						{
							ID:      "roles",
							Label:   "Roles",
							Path:    "/system/iam/roles",
							Roles:   []string{"ops:admin"},
							Require: &access.Requirement{Resource: "role", Action: "read"},
						},
					},
				},
				{
					ID:    "audit",
					Label: "Audit Log",
					Icon:  "file-search",
					Path:  "/system/audit",
					Roles: []string{"ops:admin", "ops:auditor"},
				},
			},
		},
	}
}
