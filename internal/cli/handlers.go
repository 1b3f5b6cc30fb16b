package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BartekS5/assetimport/internal/config"
	"github.com/BartekS5/assetimport/internal/etl"
	"github.com/BartekS5/assetimport/internal/mitigation"
	"github.com/BartekS5/assetimport/internal/parser"
	"github.com/BartekS5/assetimport/internal/schema"
	"github.com/BartekS5/assetimport/pkg/database"
	"github.com/BartekS5/assetimport/pkg/logger"
	"github.com/BartekS5/assetimport/pkg/models"
	"github.com/BartekS5/assetimport/pkg/utils"
)

// importRun is one session opened from command-line options.
type importRun struct {
	cfg        *config.Config
	session    *etl.Session
	errPolicy  models.ErrorPolicy
	enumPolicy models.EnumPolicy
	close      func()
}

func runFields(cmd *cobra.Command) error {
	renderFields(cmd.OutOrStdout(), schema.Assets().AllFields())
	return nil
}

func openSession(cmd *cobra.Command, opts *ImportOptions, withStore bool) (*importRun, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if opts.Store != "" {
		cfg.Store = config.Store(opts.Store)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if opts.Debug {
		logger.SetLevel(logger.DEBUG)
	}

	table, err := parser.ParseFile(opts.File)
	if err != nil {
		return nil, err
	}
	logger.Infof("Parsed %d rows with %d columns from %s", len(table.Rows), len(table.Headers), opts.File)

	var profile *models.MappingProfile
	if opts.MappingFile != "" {
		if profile, err = config.LoadProfile(opts.MappingFile); err != nil {
			return nil, err
		}
	}

	errPolicy, enumPolicy, err := resolvePolicies(opts, cfg, profile)
	if err != nil {
		return nil, err
	}

	var loader etl.Loader
	closeStore := func() {}
	if withStore {
		if loader, closeStore, err = openStore(commandContext(cmd), cfg); err != nil {
			return nil, err
		}
	}

	proc := etl.NewProcessor(etl.NewTransformer(schema.Assets(), enumPolicy), loader)
	proc.BatchSize = cfg.BatchSize
	proc.PreviewLimit = cfg.PreviewLimit
	if opts.Limit > 0 {
		proc.PreviewLimit = opts.Limit
	}

	s := etl.NewSession(proc, errPolicy)
	s.Upload(table)
	if err := setupMapping(s, profile, opts); err != nil {
		closeStore()
		return nil, err
	}

	return &importRun{
		cfg:        cfg,
		session:    s,
		errPolicy:  errPolicy,
		enumPolicy: enumPolicy,
		close:      closeStore,
	}, nil
}

// resolvePolicies picks each policy from the flag, then the profile, then the environment.
func resolvePolicies(opts *ImportOptions, cfg *config.Config, profile *models.MappingProfile) (models.ErrorPolicy, models.EnumPolicy, error) {
	errRaw, enumRaw := "", string(cfg.EnumPolicy)
	if profile != nil {
		if profile.ErrorPolicy != "" {
			errRaw = string(profile.ErrorPolicy)
		}
		if profile.EnumPolicy != "" {
			enumRaw = string(profile.EnumPolicy)
		}
	}
	if opts.ErrorPolicy != "" {
		errRaw = opts.ErrorPolicy
	}
	if opts.EnumPolicy != "" {
		enumRaw = opts.EnumPolicy
	}

	errPolicy, err := models.ParseErrorPolicy(errRaw)
	if err != nil {
		return "", "", err
	}
	enumPolicy, err := models.ParseEnumPolicy(enumRaw)
	if err != nil {
		return "", "", err
	}
	return errPolicy, enumPolicy, nil
}

func setupMapping(s *etl.Session, profile *models.MappingProfile, opts *ImportOptions) error {
	if err := s.Map(); err != nil {
		return err
	}
	if profile != nil {
		m, err := profile.Mapping()
		if err != nil {
			return fmt.Errorf("invalid mapping profile: %w", err)
		}
		if err := s.SetMapping(m); err != nil {
			return err
		}
	}

	for _, kv := range opts.Assign {
		header, path, err := splitPair(kv)
		if err != nil {
			return err
		}
		if err := s.Assign(header, path); err != nil {
			return err
		}
	}
	for _, header := range opts.Unassign {
		if err := s.Unassign(header); err != nil {
			return err
		}
	}
	custom := map[models.ExtendedTarget][]string{
		models.TargetExtended:         opts.Custom,
		models.TargetHardwareExtended: opts.HWCustom,
	}
	for _, target := range []models.ExtendedTarget{models.TargetExtended, models.TargetHardwareExtended} {
		for _, kv := range custom[target] {
			header, key, err := splitPair(kv)
			if err != nil {
				return err
			}
			if err := s.AddCustom(models.CustomMapping{Header: header, Key: key, Target: target}); err != nil {
				return err
			}
		}
	}
	return nil
}

// splitPair splits "Column=value" on the last '='. Column names may contain '='.
func splitPair(kv string) (string, string, error) {
	i := strings.LastIndex(kv, "=")
	if i <= 0 || i == len(kv)-1 {
		return "", "", fmt.Errorf("expected Column=value, got %q", kv)
	}
	return kv[:i], strings.TrimSpace(kv[i+1:]), nil
}

func openStore(ctx context.Context, cfg *config.Config) (etl.Loader, func(), error) {
	switch cfg.Store {
	case config.StoreMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoConnString)
		if err != nil {
			return nil, nil, err
		}
		loader := etl.NewMongoLoader(client, cfg.MongoDatabase, cfg.MongoCollection)
		if err := loader.EnsureIndexes(ctx); err != nil {
			database.DisconnectMongo(client)
			return nil, nil, err
		}
		return loader, func() { database.DisconnectMongo(client) }, nil

	case config.StoreSQLServer:
		db, err := database.ConnectSQL(ctx, cfg.SQLConnString)
		if err != nil {
			return nil, nil, err
		}
		loader, err := etl.NewSQLLoader(db, cfg.SQLTable)
		if err == nil {
			err = loader.EnsureTable(ctx)
		}
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return loader, func() { db.Close() }, nil
	}

	logger.Infof("ASSET_STORE is %q, commit will not write anything", cfg.Store)
	return etl.SimulatedLoader{}, func() {}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (r *importRun) timeoutContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(commandContext(cmd), r.cfg.Timeout)
}

func runAutomap(cmd *cobra.Command, opts *ImportOptions) error {
	run, err := openSession(cmd, opts, false)
	if err != nil {
		return err
	}
	defer run.close()

	out := cmd.OutOrStdout()
	reg := schema.Assets()
	m := run.session.Mapping()

	renderMapping(out, run.session.Table().Headers, m, reg)
	renderCollisions(out, run.session.Collisions())
	renderMissing(out, etl.MissingRequired(reg, m))

	if opts.SaveMapping != "" {
		profile := models.ProfileFromMapping(m, run.errPolicy, run.enumPolicy)
		if err := config.SaveProfile(opts.SaveMapping, profile); err != nil {
			return err
		}
		fmt.Fprintln(out, successStyle.Render("Mapping saved to "+opts.SaveMapping))
	}
	return nil
}

func runPreview(cmd *cobra.Command, opts *ImportOptions) error {
	run, err := openSession(cmd, opts, false)
	if err != nil {
		return err
	}
	defer run.close()

	ctx, cancel := run.timeoutContext(cmd)
	defer cancel()

	report, err := run.session.Preview(ctx)
	if err != nil {
		return err
	}
	renderPreview(cmd.OutOrStdout(), report, opts.Debug)
	return nil
}

func runCommit(cmd *cobra.Command, opts *ImportOptions) error {
	run, err := openSession(cmd, opts, true)
	if err != nil {
		return err
	}
	defer run.close()

	ctx, cancel := run.timeoutContext(cmd)
	defer cancel()

	out := cmd.OutOrStdout()
	preview, err := run.session.Preview(ctx)
	if err != nil {
		return err
	}
	renderPreview(out, preview, opts.Debug)

	if err := run.session.CanCommit(); err != nil {
		return err
	}

	report, err := run.session.Commit(ctx)
	if err != nil {
		if report.Total > 0 {
			renderCommit(out, report)
		}
		return fmt.Errorf("commit failed: %w", err)
	}
	renderCommit(out, report)
	return nil
}

var errNoAssets = errors.New("no valid assets to suggest mitigations for")

func runMitigate(cmd *cobra.Command, opts *MitigateOptions) error {
	run, err := openSession(cmd, &opts.ImportOptions, false)
	if err != nil {
		return err
	}
	defer run.close()

	ctx, cancel := run.timeoutContext(cmd)
	defer cancel()

	report, err := run.session.Preview(ctx)
	if err != nil {
		return err
	}

	var suggester mitigation.Suggester = mitigation.RuleSuggester{}
	found := 0
	for _, o := range report.Outcomes {
		req := mitigation.RequestFromRecord(o.Record)
		if opts.DeviceID != "" && utils.Stringify(o.Record[schema.DeviceIDPath]) != opts.DeviceID {
			continue
		}
		if !o.IsValid {
			logger.Warnf("Row %d is invalid, skipping %s", o.Row, req.AssetName)
			continue
		}

		suggestions, err := suggester.Suggest(ctx, req)
		if err != nil {
			return fmt.Errorf("row %d: %w", o.Row, err)
		}
		renderSuggestions(cmd.OutOrStdout(), req.AssetName, suggestions)
		found++
	}

	if found == 0 {
		if opts.DeviceID != "" {
			return fmt.Errorf("%w: device %q not found in the first %d rows", errNoAssets, opts.DeviceID, report.Total)
		}
		return errNoAssets
	}
	return nil
}
