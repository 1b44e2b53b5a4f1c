package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fasaldoc/cases"
	"fasaldoc/gateway"
	"fasaldoc/models"
	"fasaldoc/photos"
	"fasaldoc/pipeline"
	"fasaldoc/regions"
	"fasaldoc/speech"
	"fasaldoc/store"
)

// localOwner keys the single-user history kept in the SQLite file.
const localOwner = "local"

var local struct {
	image  string
	region string
	crop   string
	lang   string
	status string
	query  string
	text   string
	yes    bool
	asJSON bool
	speak  bool
	espeak string
	sqlite string
}

func addLocalCommands(root *cobra.Command) {
	root.PersistentFlags().StringVar(&local.sqlite, "db", "", "SQLite history file (default $SQLITE_PATH)")

	diagnoseCmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Diagnose a crop photo and open a case",
		Args:  cobra.NoArgs,
		RunE:  runDiagnose,
	}
	diagnoseCmd.Flags().StringVar(&local.image, "image", "", "photo of the affected plant (required)")
	diagnoseCmd.Flags().StringVar(&local.region, "region", "", "state (default $DEFAULT_REGION)")
	diagnoseCmd.Flags().StringVar(&local.crop, "crop", "", "crop name (required)")
	diagnoseCmd.Flags().StringVar(&local.lang, "lang", "", "output language code, empty for the state's language")
	diagnoseCmd.Flags().BoolVar(&local.asJSON, "json", false, "print the full result as JSON")
	diagnoseCmd.Flags().BoolVar(&local.speak, "speak", false, "read the diagnosis aloud")
	diagnoseCmd.Flags().StringVar(&local.espeak, "espeak", "espeak-ng", "speech synthesizer binary")
	_ = diagnoseCmd.MarkFlagRequired("image")
	_ = diagnoseCmd.MarkFlagRequired("crop")

	followUpCmd := &cobra.Command{
		Use:   "followup <case-id>",
		Short: "Re-evaluate a case from a new photo",
		Args:  cobra.ExactArgs(1),
		RunE:  runFollowUp,
	}
	followUpCmd.Flags().StringVar(&local.image, "image", "", "new photo (required)")
	followUpCmd.Flags().StringVar(&local.lang, "lang", "", "output language code")
	_ = followUpCmd.MarkFlagRequired("image")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List cases, most recent first",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	historyCmd.Flags().StringVar(&local.status, "status", cases.FilterAll, "status filter")
	historyCmd.Flags().StringVarP(&local.query, "q", "q", "", "search disease or crop")

	noteCmd := &cobra.Command{
		Use:   "note <case-id>",
		Short: "Add a note and/or change the status of a case",
		Args:  cobra.ExactArgs(1),
		RunE:  runNote,
	}
	noteCmd.Flags().StringVar(&local.text, "text", "", "note text")
	noteCmd.Flags().StringVar(&local.status, "status", "", "new status (default: unchanged)")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the whole case history",
		Args:  cobra.NoArgs,
		RunE:  runClear,
	}
	clearCmd.Flags().BoolVar(&local.yes, "yes", false, "confirm deletion")

	root.AddCommand(diagnoseCmd, followUpCmd, historyCmd, noteCmd, clearCmd)
}

// openLocal builds the pipeline over the SQLite history. The model gateway
// is only built when needed.
func openLocal(ctx context.Context, withModel bool) (*pipeline.Service, func(), error) {
	path := local.sqlite
	if path == "" {
		path = cfg.SQLitePath
	}
	db, err := store.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	lc := cases.NewLifecycle(db, logger.Named("cases"))

	var gw gateway.Gateway
	opts := []pipeline.Option{pipeline.WithLogger(logger.Named("pipeline"))}
	if withModel {
		if gw, err = newGateway(ctx, cfg, logger); err != nil {
			db.Close()
			return nil, nil, err
		}
		archive, err := photos.New(cfg.Photos)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		opts = append(opts, pipeline.WithPhotos(archive))
	}
	svc := pipeline.New(gw, regions.Default(), lc, opts...)
	return svc, func() { db.Close() }, nil
}

func readImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	img, err := readImage(local.image)
	if err != nil {
		return err
	}
	svc, closeFn, err := openLocal(ctx, true)
	if err != nil {
		return err
	}
	defer closeFn()

	region := local.region
	if region == "" {
		region = cfg.DefaultRegion
	}
	res, err := svc.Diagnose(ctx, localOwner, pipeline.DiagnoseRequest{
		Region:       region,
		Crop:         local.crop,
		LanguageCode: local.lang,
		ImageBase64:  img,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if local.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		printDiagnosis(out, res)
	}

	if local.speak {
		synth := speech.Command{Path: local.espeak}
		voices, err := synth.Voices(ctx)
		if err != nil {
			logger.Warn("listing voices failed", zap.Error(err))
		}
		session := speech.NewSession(synth, speech.WithLogger(logger.Named("speech")))
		u := speech.NewUtterance(res.Speech, voices, res.VoiceTag, speech.DiagnosisRate)
		logger.Debug("speaking", zap.String("voice", u.Voice.Name), zap.String("lang", u.Lang))
		if err := session.Speak(ctx, u); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("speech failed", zap.Error(err))
		}
	}
	return nil
}

func printDiagnosis(w io.Writer, res pipeline.DiagnoseResult) {
	d := res.Diagnosis
	fmt.Fprintf(w, "%s on %s (%d%%, %s)\n", d.DiseaseName, d.CropName, d.Confidence, d.Severity)
	if d.Description != "" {
		fmt.Fprintln(w, d.Description)
	}
	for _, s := range d.Symptoms {
		fmt.Fprintf(w, "  - %s\n", s)
	}
	if t := d.ChemicalTreatment; t.Pesticide != "" {
		fmt.Fprintf(w, "Treatment: %s %s %s %s\n", t.Pesticide, t.Dosage, t.Method, t.Frequency)
	}
	if d.OrganicTreatment != "" {
		fmt.Fprintf(w, "Organic: %s\n", d.OrganicTreatment)
	}
	for _, p := range d.RecoveryPlan {
		fmt.Fprintf(w, "  Day %d: %s\n", p.Day, p.Action)
	}
	if d.Warning != "" {
		fmt.Fprintf(w, "Warning: %s\n", d.Warning)
	}
	fmt.Fprintf(w, "Case %s opened (%s)\n", res.Case.ID, res.Case.Status)
}

func runFollowUp(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	img, err := readImage(local.image)
	if err != nil {
		return err
	}
	svc, closeFn, err := openLocal(ctx, true)
	if err != nil {
		return err
	}
	defer closeFn()

	rec, a, err := svc.FollowUp(ctx, localOwner, args[0], img, local.lang)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if a == nil {
		fmt.Fprintf(out, "Could not read the assessment; case %s stays %s\n", rec.ID, rec.Status)
		return nil
	}
	fmt.Fprintf(out, "%s: %s\n%s\n", a.Status, a.Assessment, a.ActionNeeded)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	svc, closeFn, err := openLocal(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeFn()

	all := svc.Cases().List(cmd.Context(), localOwner)
	sum := cases.Summarize(all)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "total %d  ongoing %d  recovered %d  severe %d\n\n", sum.Total, sum.Ongoing, sum.Recovered, sum.Severe)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSTATE\tCROP\tDISEASE\tSEVERITY\tSTATUS\tNOTES")
	for _, r := range cases.Filter(all, local.status, local.query) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n", r.ID, r.DisplayDate, r.Region, r.Crop, r.Disease, r.Severity, r.Status, len(r.Notes))
	}
	return tw.Flush()
}

func runNote(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, closeFn, err := openLocal(ctx, false)
	if err != nil {
		return err
	}
	defer closeFn()

	rec, err := svc.Cases().Get(ctx, localOwner, args[0])
	if err != nil {
		return err
	}
	status := rec.Status
	if s := strings.TrimSpace(local.status); s != "" {
		status = models.CaseStatus(strings.ToUpper(s))
		if !status.Valid() {
			return fmt.Errorf("unknown status %q", local.status)
		}
	}
	if strings.TrimSpace(local.text) == "" && status == rec.Status {
		return errors.New("nothing to change: give --text or a new --status")
	}
	rec, err = svc.Cases().AddNote(ctx, localOwner, args[0], local.text, status)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Case %s is %s with %d note(s)\n", rec.ID, rec.Status, len(rec.Notes))
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	if !local.yes {
		return errors.New("refusing to delete the history without --yes")
	}
	svc, closeFn, err := openLocal(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeFn()
	svc.Cases().DeleteAll(cmd.Context(), localOwner)
	fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
	return nil
}
