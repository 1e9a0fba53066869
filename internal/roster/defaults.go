package roster

import "time"

// Default returns the static staff configuration the practice runs on. The
// profile store can override the weekly-off calendar and deactivate staff at
// startup; everything else is the single source of truth for dropdowns and
// allocation.
func Default() *Roster {
	return &Roster{
		Departments: []Department{
			{
				Name: "PROSTHO",
				Doctors: []string{
					"DR.HUSSAIN",
					"DR.SHIFA",
				},
				Assistants: []string{
					"ARCHANA",
					"SHAKSHI",
					"RAJA",
					"NITIN",
					"ANSHIKA",
					"BABU",
					"PRAMOTH",
					"RESHMA",
				},
				Rules: map[string]Rule{
					// Anshika primarily, Archana after 1pm, Shakshi after 3:30pm.
					RoleFirst: {
						Default:      []string{"ANSHIKA", "RAJA", "NITIN", "RESHMA", "PRAMOTH", "BABU"},
						TimeOverride: []TimeOverride{{13, "ARCHANA"}, {15.5, "SHAKSHI"}},
					},
					RoleSecond: {
						Default: []string{"NITIN", "ANSHIKA", "BABU", "RAJA", "RESHMA", "PRAMOTH"},
						// When Anshika took FIRST, prefer Archana on SECOND.
						WhenFirstIs: map[string][]string{
							"ANSHIKA": {"ARCHANA", "NITIN", "BABU", "RAJA", "RESHMA", "PRAMOTH"},
						},
					},
				},
			},
			{
				Name: "ENDO",
				Doctors: []string{
					"DR.FARHATH",
					"DR.NIMAI",
					"DR.SHRUTI",
					"DR.KALPANA",
					"DR.MANVEEN",
					"DR.NEHA",
				},
				Assistants: []string{
					"ANYA",
					"LAVANYA",
					"ROHINI",
					"MUKHILA",
					"SHAKSHI",
					"ARCHANA",
					"ANSHIKA", // shared with PROSTHO
				},
				Rules: map[string]Rule{
					RoleFirst: {
						Default: []string{"LAVANYA", "ROHINI", "ANYA"},
						Doctor: map[string][]string{
							"DR.NIMAI":   {"ARCHANA"},
							"DR.FARHATH": {"ANYA", "LAVANYA", "ROHINI"},
							"DR.SHRUTI":  {"LAVANYA", "ANYA", "ROHINI"},
							"DR.KALPANA": {"ROHINI", "ANYA", "LAVANYA"},
							"DR.MANVEEN": {"ANYA", "ROHINI", "LAVANYA"},
							"DR.NEHA":    {"LAVANYA", "ROHINI", "ANYA"},
						},
						TimeOverride: []TimeOverride{{12, "ANYA"}},
					},
					RoleSecond: {
						Default: []string{"MUKHILA", "SHAKSHI", "ARCHANA", "ROHINI"},
					},
					RoleThird: {
						Default: []string{"ROHINI", "SHAKSHI", "ARCHANA", "MUKHILA"},
					},
				},
			},
		},
		WeeklyOff: map[time.Weekday][]string{
			time.Monday:    {"RAJA"},
			time.Tuesday:   {"PRAMOTH", "ANYA"},
			time.Wednesday: {"ANSHIKA", "MUKHILA"},
			time.Thursday:  {"RESHMA", "LAVANYA"},
			time.Friday:    {"ROHINI"},
			time.Saturday:  {},
			time.Sunday:    {"NITIN", "BABU"},
		},
		Aliases: map[string]string{
			// Legacy spelling kept for compatibility with existing data.
			"DRHUSAIN": "DRHUSSAIN",
		},
	}
}
