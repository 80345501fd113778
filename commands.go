package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/aschmelyun/tidea/internal/api"
	"github.com/aschmelyun/tidea/internal/config"
	"github.com/aschmelyun/tidea/internal/logging"
	"github.com/aschmelyun/tidea/internal/workflow"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type commandContext struct {
	configFlag string
	overrides  config.Overrides

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Apply(c.overrides); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// session builds a logger, API client, controller and session from the
// loaded config. The interactive UI owns the terminal, so it only logs to
// a file; the plain commands log to stderr as well.
func (c *commandContext) session(interactive bool) (*workflow.Session, io.Closer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	outputs := []string{"stderr"}
	if interactive {
		outputs = nil
	}
	if cfg.LogFile != "" {
		outputs = append(outputs, cfg.LogFile)
	}
	logger, closer, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Outputs: outputs,
	})
	if err != nil {
		return nil, nil, err
	}
	logger = logger.With("component", "tidea")

	client := api.NewClient(api.Config{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout()}, api.WithLogger(logger))
	ctrl := workflow.NewController(client, logger)

	role, err := workflow.ParseRole(cfg.Role)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	logger.Debug("session ready", slog.String("base_url", client.BaseURL()), slog.String("language", cfg.Language))
	return workflow.NewSession(ctrl, role, cfg.Language), closer, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "tidea [file]",
		Short:         "Turn a recording into a transcript, ideas and finished content",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, BulletStyle.Render("┌")+TitleStyle.Render("tidea"))
			if len(args) == 0 {
				printUsage(out)
				return nil
			}
			return runInteractive(cmd, ctx, args[0])
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&ctx.overrides.BaseURL, "base-url", "", "Backend address (overrides config)")
	flags.StringVar(&ctx.overrides.Language, "lang", "", "Audio language: auto, vietnamese, english, japanese")
	flags.StringVar(&ctx.overrides.Role, "role", "", "editor or creator")
	flags.StringVar(&ctx.overrides.LogLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(newHealthCommand(ctx))
	rootCmd.AddCommand(newTranscribeCommand(ctx))
	rootCmd.AddCommand(newIdeasCommand(ctx))
	rootCmd.AddCommand(newContentCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, BulletStyle.Render("├")+TextStyle.Render("Usage: tidea [options] <media-file>"))
	fmt.Fprintln(out, BulletStyle.Render("│"))
	fmt.Fprintln(out, BulletStyle.Render("├")+TextStyle.Render("Options:"))
	fmt.Fprintln(out, BulletStyle.Render("├────")+TextStyle.Render("--lang")+DimTextStyle.Render("      audio language (auto, vietnamese, english, japanese)"))
	fmt.Fprintln(out, BulletStyle.Render("├────")+TextStyle.Render("--role")+DimTextStyle.Render("      editor or creator"))
	fmt.Fprintln(out, BulletStyle.Render("├────")+TextStyle.Render("--base-url")+DimTextStyle.Render("  backend address"))
	fmt.Fprintln(out, BulletStyle.Render("├────")+TextStyle.Render("--config")+DimTextStyle.Render("    configuration file"))
	fmt.Fprintln(out, BulletStyle.Render("│"))
	fmt.Fprintln(out, BulletStyle.Render("├")+TextStyle.Render("Commands:"))
	fmt.Fprintln(out, BulletStyle.Render("├────")+TextStyle.Render("health")+DimTextStyle.Render("      check the backend"))
	fmt.Fprintln(out, BulletStyle.Render("├────")+TextStyle.Render("transcribe")+DimTextStyle.Render("  print the transcript of a file"))
	fmt.Fprintln(out, BulletStyle.Render("├────")+TextStyle.Render("ideas")+DimTextStyle.Render("       print the ideas found in a file"))
	fmt.Fprintln(out, BulletStyle.Render("├────")+TextStyle.Render("content")+DimTextStyle.Render("     generate content for one idea"))
	fmt.Fprintln(out, BulletStyle.Render("│"))
	fmt.Fprintln(out, BulletStyle.Render("└")+TextStyle.Render("Supported formats:")+DimTextStyle.Render(" "+strings.Join(workflow.MediaExtensions, ", ")))
}

func runInteractive(cmd *cobra.Command, ctx *commandContext, path string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("the interactive UI needs a terminal; use `tidea transcribe`, `tidea ideas` or `tidea content` instead")
	}

	media, err := workflow.MediaFromFile(path)
	if err != nil {
		return err
	}

	session, closer, err := ctx.session(true)
	if err != nil {
		return err
	}
	defer closer.Close()
	session.StageFile(media)

	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width, height = 64, 16
	}

	p := tea.NewProgram(newModel(cmd.Context(), session, filepath.Dir(path), width, height))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, closer, err := ctx.session(false)
			if err != nil {
				return err
			}
			defer closer.Close()

			message, err := session.Controller().Health(cmd.Context())
			if err != nil {
				if apiErr, ok := api.AsError(err); ok && apiErr.HasResponse() {
					return fmt.Errorf("backend unhealthy (status %d): %w", apiErr.Status, err)
				}
				return fmt.Errorf("backend unreachable: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Upload a recording and print its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, closer, err := stagedSession(ctx, args[0])
			if err != nil {
				return err
			}
			defer closer.Close()

			segments, err := session.GenerateTranscript(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, segments)
			}
			fmt.Fprintln(cmd.OutOrStdout(), segmentTable(segments, shouldColorize(cmd.OutOrStdout())))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newIdeasCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var remove []int

	cmd := &cobra.Command{
		Use:   "ideas <file>",
		Short: "Transcribe a recording and print the ideas found in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, closer, err := stagedSession(ctx, args[0])
			if err != nil {
				return err
			}
			defer closer.Close()

			ideas, err := transcribeAndGenerateIdeas(cmd, session, remove)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, ideas)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ideaTable(ideas, shouldColorize(cmd.OutOrStdout())))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().IntSliceVar(&remove, "remove", nil, "Transcript segment IDs to leave out")
	return cmd
}

func newContentCommand(ctx *commandContext) *cobra.Command {
	var (
		ideaID   int
		format   string
		deselect []string
		remove   []int
		outPath  string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "content <file>",
		Short: "Run the whole workflow and generate content for one idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ideaID <= 0 {
				return errors.New("--idea is required")
			}
			session, closer, err := stagedSession(ctx, args[0])
			if err != nil {
				return err
			}
			defer closer.Close()

			if _, err := transcribeAndGenerateIdeas(cmd, session, remove); err != nil {
				return err
			}
			if err := session.SelectIdea(ideaID); err != nil {
				return err
			}
			if format != "" {
				f, err := workflow.ParseFormat(format)
				if err != nil {
					return err
				}
				if err := session.SetIdeaFormat(ideaID, f); err != nil {
					return err
				}
			}
			for _, subID := range deselect {
				if !strings.Contains(subID, "-") {
					subID = fmt.Sprintf("%d-%s", ideaID, subID)
				}
				if err := session.SetSubIdeaSelected(ideaID, subID, false); err != nil {
					return err
				}
			}

			req, err := session.PendingContentRequest()
			if err != nil {
				return err
			}
			content, err := session.GenerateContent(cmd.Context())
			if err != nil {
				return err
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", outPath, err)
				}
			}
			if asJSON {
				return writeJSON(cmd, struct {
					Request workflow.ContentRequest `json:"request"`
					Content string                  `json:"content"`
				}{req, content})
			}
			if outPath != "" {
				fmt.Fprintln(cmd.OutOrStdout(), BulletStyle.Render("└")+TextStyle.Render("Saved content to "+outPath))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), content)
			return nil
		},
	}
	cmd.Flags().IntVar(&ideaID, "idea", 0, "ID of the idea to write about")
	cmd.Flags().StringVar(&format, "format", "", "Override the idea format: video, blog, post, infographic")
	cmd.Flags().StringSliceVar(&deselect, "deselect", nil, "Sub-idea IDs to leave out (e.g. 2 or 1-2)")
	cmd.Flags().IntSliceVar(&remove, "remove", nil, "Transcript segment IDs to leave out")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the content to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the request and content as JSON")
	return cmd
}

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:         "sample",
		Short:       "Print a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), config.Sample())
			return err
		},
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the default configuration file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
		Annotations: map[string]string{"skipConfigLoad": "true"},
	})
	return configCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), BulletStyle.Render("└")+TextStyle.Render(VERSION))
		},
	}
}

func stagedSession(ctx *commandContext, path string) (*workflow.Session, io.Closer, error) {
	media, err := workflow.MediaFromFile(path)
	if err != nil {
		return nil, nil, err
	}
	session, closer, err := ctx.session(false)
	if err != nil {
		return nil, nil, err
	}
	session.StageFile(media)
	return session, closer, nil
}

func transcribeAndGenerateIdeas(cmd *cobra.Command, session *workflow.Session, remove []int) ([]workflow.Idea, error) {
	if _, err := session.GenerateTranscript(cmd.Context()); err != nil {
		return nil, err
	}
	for _, id := range remove {
		if err := session.SetSegmentRemoved(id, true); err != nil {
			return nil, err
		}
	}
	return session.GenerateIdeas(cmd.Context())
}

func segmentTable(segments []workflow.Segment, colorize bool) string {
	rows := make([][]string, 0, len(segments))
	for _, s := range segments {
		rows = append(rows, []string{strconv.Itoa(s.ID), s.Timeline, s.Language, s.Text})
	}
	return renderTable([]string{"ID", "Time", "Language", "Text"}, rows, []columnAlignment{alignRight}, colorize)
}

func ideaTable(ideas []workflow.Idea, colorize bool) string {
	rows := make([][]string, 0, len(ideas))
	for _, idea := range ideas {
		subs := make([]string, len(idea.SubIdeas))
		for i, sub := range idea.SubIdeas {
			subs[i] = sub.ID + " " + sub.Text
		}
		rows = append(rows, []string{strconv.Itoa(idea.ID), string(idea.Format), idea.Timestamp, idea.MainIdea, strings.Join(subs, "\n")})
	}
	return renderTable([]string{"ID", "Format", "Time", "Main idea", "Sub-ideas"}, rows, []columnAlignment{alignRight}, colorize)
}
