package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/scan-registration/internal/app"
	"github.com/noah-isme/scan-registration/internal/models"
	"github.com/noah-isme/scan-registration/internal/service"
	"github.com/noah-isme/scan-registration/pkg/config"
	"github.com/noah-isme/scan-registration/pkg/logger"
)

var flagLimit *cli.IntFlag = &cli.IntFlag{
	Name:  "limit",
	Value: 50,
	Usage: "Number of most recent scan log entries",
}

var flagFormat *cli.StringFlag = &cli.StringFlag{
	Name:  "format",
	Value: string(models.ExportFormatCSV),
	Usage: "Export format: csv or pdf",
}

var flagOut *cli.StringFlag = &cli.StringFlag{
	Name:  "out",
	Usage: "Output file, defaults to the generated export name",
}

// toolkit carries the services a command needs and releases the stores afterwards.
type toolkit struct {
	students     *service.StudentService
	scanLogs     *service.ScanLogService
	exports      *service.ExportService
	registration *service.RegistrationService
	close        func()
}

func openToolkit(ctx context.Context) (*toolkit, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	stores, err := app.OpenStores(ctx, cfg, logr)
	if err != nil {
		return nil, err
	}

	students := service.NewStudentService(stores.Students, validator.New(), logr, cfg.Store.Timeout)
	scanLogs := service.NewScanLogService(stores.ScanLogs, logr, cfg.ScanLogs.DefaultLimit, cfg.Store.Timeout)
	return &toolkit{
		students:     students,
		scanLogs:     scanLogs,
		exports:      service.NewExportService(students, scanLogs, logr, nil, nil),
		registration: service.NewRegistrationService(stores.Students, stores.ScanLogs, nil, logr, service.RegistrationConfig{StoreTimeout: cfg.Store.Timeout}),
		close: func() {
			if err := stores.Close(context.Background()); err != nil {
				logr.Warn("closing stores failed", zap.Error(err))
			}
			_ = logr.Sync()
		},
	}, nil
}

func withToolkit(action func(cCtx *cli.Context, tk *toolkit) error) cli.ActionFunc {
	return func(cCtx *cli.Context) error {
		tk, err := openToolkit(cCtx.Context)
		if err != nil {
			return err
		}
		defer tk.close()
		return action(cCtx, tk)
	}
}

func main() {
	cliApp := &cli.App{
		Name:           "rosterctl",
		Usage:          "Manage the student registration roster",
		DefaultCommand: "students",
		Commands: []*cli.Command{
			{
				Name:  "seed",
				Usage: "Insert the sample students when the directory is empty",
				Action: withToolkit(func(cCtx *cli.Context, tk *toolkit) error {
					n, err := tk.students.SeedSamples(cCtx.Context)
					if err != nil {
						return err
					}
					fmt.Printf("seeded %d students\n", n)
					return nil
				}),
			},
			{
				Name:      "import",
				Usage:     "Upsert students from a CSV roster",
				ArgsUsage: "<file.csv>",
				Action: withToolkit(func(cCtx *cli.Context, tk *toolkit) error {
					path := cCtx.Args().First()
					if path == "" {
						return cli.Exit("import needs a CSV file", 2)
					}
					f, err := os.Open(path)
					if err != nil {
						return err
					}
					defer f.Close()

					summary, err := tk.students.ImportCSV(cCtx.Context, f)
					if err != nil {
						return err
					}
					fmt.Printf("rows=%d synced=%d skipped=%d\n", summary.Rows, summary.Synced, summary.Skipped)
					return nil
				}),
			},
			{
				Name:  "students",
				Usage: "List the student directory",
				Action: withToolkit(func(cCtx *cli.Context, tk *toolkit) error {
					students, err := tk.students.List(cCtx.Context)
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "STUDENT ID\tNAME\tREGISTERED")
					for _, s := range students {
						fmt.Fprintf(w, "%s\t%s\t%t\n", s.StudentID, s.Name, s.RegistrationStatus)
					}
					return w.Flush()
				}),
			},
			{
				Name:  "logs",
				Usage: "Show the most recent scan attempts",
				Flags: []cli.Flag{flagLimit},
				Action: withToolkit(func(cCtx *cli.Context, tk *toolkit) error {
					logs, err := tk.scanLogs.ListRecent(cCtx.Context, cCtx.Int(flagLimit.Name))
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "TIMESTAMP\tSTUDENT ID\tNAME\tSTATUS\tTYPE")
					for _, l := range logs {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", l.Timestamp.Format("2006-01-02 15:04:05"), l.StudentID, l.StudentName, l.Status, l.ScanType)
					}
					return w.Flush()
				}),
			},
			{
				Name:      "register",
				Usage:     "Register a student by ID as a manual entry",
				ArgsUsage: "<student-id>",
				Action: withToolkit(func(cCtx *cli.Context, tk *toolkit) error {
					res, err := tk.registration.Register(cCtx.Context, cCtx.Args().First(), models.ScanTypeManual)
					if err != nil {
						return err
					}
					fmt.Println(res.PopupMessage)
					return nil
				}),
			},
			{
				Name:      "export",
				Usage:     "Export students or scan logs",
				ArgsUsage: "students|logs",
				Flags:     []cli.Flag{flagFormat, flagOut, flagLimit},
				Action: withToolkit(func(cCtx *cli.Context, tk *toolkit) error {
					format := models.ExportFormat(cCtx.String(flagFormat.Name))
					var (
						res *service.ExportResult
						err error
					)
					switch cCtx.Args().First() {
					case "students":
						res, err = tk.exports.Students(cCtx.Context, format)
					case "logs":
						res, err = tk.exports.ScanLogs(cCtx.Context, format, cCtx.Int(flagLimit.Name))
					default:
						return cli.Exit("export needs students or logs", 2)
					}
					if err != nil {
						return err
					}
					out := cCtx.String(flagOut.Name)
					if out == "" {
						out = res.Filename
					}
					if err := os.WriteFile(out, res.Payload, 0o644); err != nil {
						return err
					}
					fmt.Printf("wrote %s (%d bytes)\n", out, len(res.Payload))
					return nil
				}),
			},
			{
				Name:      "hash-password",
				Usage:     "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
				ArgsUsage: "<password>",
				Action: func(cCtx *cli.Context) error {
					password := cCtx.Args().First()
					if password == "" {
						return cli.Exit("hash-password needs a password", 2)
					}
					hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
					if err != nil {
						return err
					}
					fmt.Println(string(hash))
					return nil
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
