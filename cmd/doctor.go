package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/cliptray/cliptray/internal/config"
	"github.com/cliptray/cliptray/internal/export"
	"github.com/cliptray/cliptray/internal/store"
	"github.com/cliptray/cliptray/internal/store/file"
	"github.com/cliptray/cliptray/pkg/protocol"
)

var (
	doctorTitle = lipgloss.NewStyle().Bold(true)
	doctorLabel = lipgloss.NewStyle().Width(14)
	doctorOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	doctorWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	doctorFail  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, data files and export folders",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println(doctorTitle.Render("cliptray doctor"))
	fmt.Printf("  Version:  %s (protocol %d)\n", Version, protocol.ProtocolVersion)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	cfgPath := resolveConfigPath()
	if _, err := os.Stat(cfgPath); err != nil {
		doctorLine("Config", cfgPath, doctorWarn, "not found, using defaults")
	} else {
		doctorLine("Config", cfgPath, doctorOK, "OK")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		doctorLine("Config", "", doctorFail, err.Error())
		return
	}

	fmt.Println()
	fmt.Println(doctorTitle.Render("  Data"))
	checkDir("Data dir", cfg.DataPath())
	checkDocument("Clips", cfg.ClipsPath())
	checkDocument("Tabs", cfg.TabsPath())
	checkDocument("Settings", cfg.SettingsPath())
	checkDir("Screenshots", cfg.ScreenshotsDir())

	fmt.Println()
	fmt.Println(doctorTitle.Render("  Export folders"))
	doc := file.ReadJSON(cfg.TabsPath(), store.TabsDocument{})
	if len(doc.Tabs) == 0 {
		doctorLine("Sections", "", doctorWarn, "none yet")
	}
	for _, s := range doc.Tabs {
		switch {
		case s.ExportPath == "":
			doctorLine(s.ID, "", doctorWarn, "mirroring off")
		case export.IsS3URL(s.ExportPath):
			doctorLine(s.ID, s.ExportPath, doctorOK, "s3")
		default:
			checkDir(s.ID, s.ExportPath)
		}
	}

	fmt.Println()
	fmt.Println(doctorTitle.Render("  Ingestion server"))
	srv := cfg.ServerSnapshot()
	addr := fmt.Sprintf("%s:%d", srv.Host, srv.Port)
	if h, ok := serverHealth(cfg); ok {
		doctorLine("Server", addr, doctorOK, fmt.Sprintf("running (%d clips, %d sections)", h.Clips, h.Sections))
	} else {
		doctorLine("Server", addr, doctorWarn, "not running")
	}
	doctorLine("Origins", fmt.Sprint(srv.AllowedOrigins), doctorOK, "")
	if srv.AllowExtensionOrigins {
		doctorLine("Extensions", "allowed", doctorOK, "")
	} else {
		doctorLine("Extensions", "blocked", doctorWarn, "browser extension requests will get 403")
	}

	fmt.Println()
	fmt.Println("Doctor check complete.")
}

func doctorLine(label, value string, style lipgloss.Style, status string) {
	line := "    " + doctorLabel.Render(label+":") + " " + value
	if status != "" {
		line += " " + style.Render("("+status+")")
	}
	fmt.Println(line)
}

func checkDir(label, dir string) {
	info, err := os.Stat(dir)
	switch {
	case err != nil:
		doctorLine(label, dir, doctorWarn, "not created yet")
	case !info.IsDir():
		doctorLine(label, dir, doctorFail, "not a directory")
	default:
		tmp, err := os.CreateTemp(dir, ".doctor-*")
		if err != nil {
			doctorLine(label, dir, doctorFail, "not writable")
			return
		}
		tmp.Close()
		os.Remove(tmp.Name())
		doctorLine(label, dir, doctorOK, "OK")
	}
}

func checkDocument(label, path string) {
	info, err := os.Stat(path)
	if err != nil {
		doctorLine(label, filepath.Base(path), doctorWarn, "absent")
		return
	}
	if file.ReadJSON[any](path, nil) == nil && info.Size() > 0 {
		doctorLine(label, filepath.Base(path), doctorFail, "unreadable, defaults in use")
		return
	}
	doctorLine(label, filepath.Base(path), doctorOK, fmt.Sprintf("%d bytes", info.Size()))
}
