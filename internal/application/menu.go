package application

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pbxtools/pbxray/internal/admin"
)

/* ----------------------------------------
	MENU TREE
---------------------------------------- */

type MenuItem struct {
	Label   string
	Submenu *Menu
	Action  func() tea.Cmd

	// Prompt asks for one line of input before running PromptAction.
	Prompt       string
	PromptAction func(value string) tea.Cmd
}

type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

/* ----------------------------------------
	MENU TREE DEFINITION
---------------------------------------- */

func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == "Back" {
			item.Submenu = parent
			continue
		}

		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

func buildMenuTree(m *Model) *Menu {
	statistics := loadStatistics(m)
	reports := loadReports(m)
	database := loadDatabase(m)

	/* Root Menu */
	root := &Menu{
		Title: "PBX Log Analyzer",
		Items: []MenuItem{
			{Label: "Parse log file", Prompt: "path to log file", PromptAction: m.analyzer.ParseFile},
			{Label: "Statistics ->", Submenu: statistics},
			{Label: "Reports ->", Submenu: reports},
			{Label: "Database ->", Submenu: database},
			{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
		},
	}

	linkParents(root, nil)

	return root
}

/* ----------------------------------------
	LOAD MENUS
---------------------------------------- */

func loadStatistics(m *Model) *Menu {
	return &Menu{
		Title: "Statistics",
		Items: []MenuItem{
			{Label: "Call statistics", Action: m.analyzer.CallStats},
			{Label: "Registrations", Action: m.analyzer.Registrations},
			{Label: "System events", Action: m.analyzer.SystemEvents},
			{Label: "SIP traffic", Action: m.analyzer.SipTraffic},
			{Label: "Back"},
		},
	}
}

func loadReports(m *Model) *Menu {
	return &Menu{
		Title: "Reports",
		Items: []MenuItem{
			{Label: "Generate HTML report", Action: m.analyzer.GenerateReport},
			{Label: "Export all tables to CSV", Action: m.analyzer.ExportAll},
			{Label: "Back"},
		},
	}
}

func loadDatabase(m *Model) *Menu {
	maint := &admin.Maintenance{Store: m.store}

	return &Menu{
		Title: "Database",
		Items: []MenuItem{
			{Label: "Database info", Action: m.analyzer.DatabaseInfo},
			{Label: "Vacuum analyze", Action: maint.Vacuum},
			{Label: "Reset all tables", Action: maint.ResetAll},
			{Label: "Back"},
		},
	}
}
