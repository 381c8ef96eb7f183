package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go-stock-opname/internal/model"
	"go-stock-opname/internal/repository"
	"go-stock-opname/internal/service"
	"go-stock-opname/pkg/config"
	"go-stock-opname/pkg/database"
	"go-stock-opname/pkg/jwt"
	"go-stock-opname/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

type options struct {
	list   bool
	delete string
	share  bool
}

// export writes a CSV snapshot of the stock table, or manages existing ones.
//
//	export            write a new CSV export
//	export -share     write and print a signed download link
//	export -list      list export files
//	export -delete N  delete export file N
func main() {
	var opts options
	flag.BoolVar(&opts.list, "list", false, "list export files")
	flag.StringVar(&opts.delete, "delete", "", "delete the named export file")
	flag.BoolVar(&opts.share, "share", false, "export and print a share link")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Service: "stock-opname-export",
		Level:   cfg.App.LogLevel,
		Format:  "console",
		Output:  os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, opts, os.Stdout, log)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("export command failed")
		os.Exit(1)
	}
}

// run executes one command and closes the store before returning.
func run(ctx context.Context, cfg *config.Config, opts options, out io.Writer, log zerolog.Logger) error {
	db, err := database.Open(cfg.DB, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()
	if err := db.Migrate(ctx, &model.StockItem{}); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	signer := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer)
	sharer := service.NewLinkSharer(signer, cfg.Export.PublicBaseURL, cfg.Export.ShareLinkTTL, nil)
	exports := service.NewExportService(repository.NewStockItemRepo(db), afero.NewOsFs(), cfg.Export.Dir, sharer, log)

	switch {
	case opts.list:
		files, err := exports.ListExportedFiles(ctx)
		if err != nil {
			return fmt.Errorf("list exports: %w", err)
		}
		for _, f := range files {
			fmt.Fprintf(out, "%s\t%d\t%s\n", f.Name, f.Size, f.ModifiedTime.Format("2006-01-02 15:04:05"))
		}

	case opts.delete != "":
		if err := exports.DeleteExportedFile(ctx, exports.PathFor(opts.delete)); err != nil {
			return fmt.Errorf("delete export %s: %w", opts.delete, err)
		}
		fmt.Fprintf(out, "deleted %s\n", opts.delete)

	case opts.share:
		res, err := exports.ExportAndShare(ctx)
		if err != nil {
			return fmt.Errorf("export and share: %w", err)
		}
		fmt.Fprintln(out, res.Message)
		fmt.Fprintln(out, res.FilePath)
		fmt.Fprintln(out, res.Share.URL)

	default:
		res, err := exports.ExportToCSV(ctx)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(out, "Berhasil mengekspor %d data ke CSV\n%s\n", res.RecordCount, res.FilePath)
	}
	return nil
}
