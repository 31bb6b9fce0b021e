package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel"
	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/logging"
	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/mockengine"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or JSON config file")
	mock := flag.Bool("mock", false, "use the in-process mock engine")
	cols := flag.Int("cols", 0, "override uniform_grid.num_columns")
	rows := flag.Int("rows", 0, "override uniform_grid.num_rows")
	flag.Parse()

	cfg := meshkernel.DefaultConfig()
	if *configPath != "" {
		loaded, err := meshkernel.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}
	if *cols > 0 {
		cfg.UniformGrid.NumColumns = *cols
	}
	if *rows > 0 {
		cfg.UniformGrid.NumRows = *rows
	}
	logger, err := logging.NewZapLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	opts := []meshkernel.Option{meshkernel.WithConfig(cfg), meshkernel.WithLogger(logger)}
	engineName := "native"
	var m *meshkernel.Manager
	if !*mock {
		m, err = meshkernel.NewNativeManager(opts...)
		if errors.Is(err, meshkernel.ErrNotBuilt) {
			log.Printf("native engine unavailable, falling back to mock: %v", err)
			m = nil
		} else if err != nil {
			log.Fatalf("unexpected failure opening engine: %v", err)
		}
	}
	if m == nil {
		engineName = "mock"
		m, err = meshkernel.NewManager(mockengine.New(), opts...)
		if err != nil {
			log.Fatalf("new manager: %v", err)
		}
	}

	rowsOut := [][2]string{
		{"wrapper", meshkernel.WrapperVersion()},
		{"engine", engineName + " " + meshkernel.EngineVersion(m.Engine())},
		{"projection", cfg.Projection.String()},
	}

	grid, err := smoke(context.Background(), m, cfg.UniformGrid)
	if err != nil {
		rowsOut = append(rowsOut, [2]string{"smoke test", "failed: " + err.Error()})
	} else {
		rowsOut = append(rowsOut, [2]string{"smoke test", fmt.Sprintf("%dx%d curvilinear nodes", grid.NumM(), grid.NumN())})
	}
	fmt.Println(report(rowsOut, term.IsTerminal(int(os.Stdout.Fd()))))

	if cerr := m.Close(); cerr != nil {
		log.Printf("close error: %v", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}

// smoke builds a uniform grid in a fresh session and reads it back.
func smoke(ctx context.Context, m *meshkernel.Manager, params meshkernel.MakeGridParameters) (meshkernel.CurvilinearGrid, error) {
	s, err := m.Create(ctx)
	if err != nil {
		return meshkernel.CurvilinearGrid{}, err
	}
	defer s.Close()

	var grid meshkernel.CurvilinearGrid
	err = s.With(ctx, func(sc *meshkernel.Scope) error {
		if err := sc.CurvilinearMakeUniform(params, meshkernel.GeometryList{}); err != nil {
			return err
		}
		grid, err = sc.CurvilinearGrid()
		return err
	})
	return grid, err
}

func report(rows [][2]string, styled bool) string {
	var b strings.Builder
	if !styled {
		for _, r := range rows {
			fmt.Fprintf(&b, "%s: %s\n", r[0], r[1])
		}
		return strings.TrimSuffix(b.String(), "\n")
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	b.WriteString(titleStyle.Render("meshkernel-go"))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(keyStyle.Width(width + 2).Render(r[0]))
		b.WriteString(valueStyle.Render(r[1]))
	}
	return boxStyle.Render(b.String())
}
