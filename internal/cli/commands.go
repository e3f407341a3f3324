package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/nodedge/nodedge/internal/app"
	"github.com/nodedge/nodedge/internal/config"
	"github.com/nodedge/nodedge/internal/scene"
	"github.com/nodedge/nodedge/internal/simulate"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func evalCmd(o *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "eval PATTERN...",
		Short: "Evaluate the outputs of scene documents",
		Long:  "Evaluate the Output blocks of every document matched by the glob patterns. ** matches any number of directories.",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the results as JSON.")
	cmd.RunE = runWithApp(o, nil, func(cmd *cobra.Command, a *app.App, args []string) error {
		docs, err := a.EvaluateFiles(cmd.Context(), args)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if asJSON {
			if err := writeJSON(w, docs); err != nil {
				return err
			}
		} else {
			for _, d := range docs {
				printDocument(w, d)
			}
		}

		failed := 0
		for _, d := range docs {
			if d.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			return &ExitError{Code: 1, Message: fmt.Sprintf("%d of %d documents failed", failed, len(docs))}
		}
		return nil
	})
	return cmd
}

// documentJSON adds the error text to app.Document.
type documentJSON struct {
	app.Document
	Error string `json:"error,omitempty"`
}

func writeJSON(w io.Writer, docs []app.Document) error {
	out := make([]documentJSON, len(docs))
	for i, d := range docs {
		out[i] = documentJSON{Document: d}
		if d.Err != nil {
			out[i].Error = d.Err.Error()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printDocument(w io.Writer, d app.Document) {
	fmt.Fprintf(w, "%s %s\n", statusIcon(d.Err == nil), d.Path)
	if len(d.Outputs) == 0 && d.Err != nil {
		fmt.Fprintf(w, "    %s\n", bad.Sprint(d.Err))
		return
	}
	for _, out := range d.Outputs {
		title := out.Title
		if title == "" {
			title = "#" + strconv.FormatUint(uint64(out.NodeID), 10)
		}
		if out.Error != "" {
			fmt.Fprintf(w, "    %s  %s\n", brand.Sprint(title), bad.Sprint(out.Error))
			continue
		}
		fmt.Fprintf(w, "    %s  %v\n", brand.Sprint(title), out.Value)
	}
}

func codegenCmd(o *options) *cobra.Command {
	var output, pkg, fn string
	cmd := &cobra.Command{
		Use:   "codegen FILE",
		Short: "Generate Go code computing the outputs of a scene",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the code to this file instead of stdout.")
	cmd.Flags().StringVar(&pkg, "package", "", "Package name of the generated file.")
	cmd.Flags().StringVar(&fn, "func", "", "Name of the generated function.")

	extra := func(flags *pflag.FlagSet, cfg *config.Config) {
		if flags.Changed("package") {
			cfg.CodegenPackage = pkg
		}
		if flags.Changed("func") {
			cfg.CodegenFunc = fn
		}
	}
	cmd.RunE = runWithApp(o, extra, func(cmd *cobra.Command, a *app.App, args []string) error {
		src, err := a.Codegen(args[0])
		if err != nil {
			return err
		}
		if output == "" {
			_, err := cmd.OutOrStdout().Write(src)
			return err
		}
		if err := os.WriteFile(output, src, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", statusIcon(true), output)
		return nil
	})
	return cmd
}

func simulateCmd(o *options) *cobra.Command {
	var (
		start, stop, step float64
		output            string
		asJSON            bool
	)
	def := config.Default()
	cmd := &cobra.Command{
		Use:   "simulate FILE",
		Short: "Run a time simulation of a scene and print the output traces as CSV",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().Float64Var(&start, "start", def.SimStart, "Start time.")
	cmd.Flags().Float64Var(&stop, "stop", def.SimStop, "Stop time, included.")
	cmd.Flags().Float64Var(&step, "step", def.SimStep, "Time step.")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the traces to this file instead of stdout.")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write JSON instead of CSV.")

	extra := func(flags *pflag.FlagSet, cfg *config.Config) {
		if flags.Changed("start") {
			cfg.SimStart = start
		}
		if flags.Changed("stop") {
			cfg.SimStop = stop
		}
		if flags.Changed("step") {
			cfg.SimStep = step
		}
	}
	cmd.RunE = runWithApp(o, extra, func(cmd *cobra.Command, a *app.App, args []string) error {
		res, err := a.Simulate(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for id, ferr := range res.Failures {
			a.Logger().Warn("Block failed during simulation.", "node_id", id, "error", ferr)
		}

		if output == "" {
			return writeTraces(cmd.OutOrStdout(), res, asJSON)
		}
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		return writeAndClose(f, res, asJSON)
	})
	return cmd
}

// writeAndClose writes the traces to wc and closes it. A close error is
// returned when the write succeeded.
func writeAndClose(wc io.WriteCloser, res *simulate.Result, asJSON bool) (err error) {
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output: %w", cerr)
		}
	}()
	return writeTraces(wc, res, asJSON)
}

func writeTraces(w io.Writer, res *simulate.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonResult(res))
	}
	return writeCSV(w, res)
}

// jsonResult replaces the NaN samples, which JSON cannot encode, with nulls.
func jsonResult(res *simulate.Result) map[string]any {
	outputs := make([]map[string]any, len(res.Outputs))
	for i, tr := range res.Outputs {
		values := make([]*float64, len(tr.Values))
		for j, v := range tr.Values {
			if !math.IsNaN(v) {
				values[j] = &tr.Values[j]
			}
		}
		outputs[i] = map[string]any{"nodeId": tr.NodeID, "title": tr.Title, "values": values}
	}
	return map[string]any{"runId": res.RunID, "time": res.Time, "outputs": outputs}
}

func writeCSV(w io.Writer, res *simulate.Result) error {
	cw := csv.NewWriter(w)
	header := []string{"time"}
	for _, tr := range res.Outputs {
		header = append(header, tr.Title)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for i, t := range res.Time {
		row[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for j, tr := range res.Outputs {
			row[j+1] = strconv.FormatFloat(tr.Values[i], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export SRC DST",
		Short: "Convert a scene document between JSON and YAML",
		Long:  "Load SRC and save it to DST. The format of DST follows its extension: .yaml and .yml write YAML, anything else JSON.",
		Args:  cobra.ExactArgs(2),
	}
	cmd.RunE = runWithApp(o, nil, func(cmd *cobra.Command, a *app.App, args []string) error {
		if err := a.Export(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s (%s)\n", statusIcon(true), args[0], args[1], scene.FormatFor(args[1]))
		return nil
	})
	return cmd
}

func watchCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Evaluate a scene document every time it changes",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = runWithApp(o, nil, func(cmd *cobra.Command, a *app.App, args []string) error {
		w := cmd.OutOrStdout()
		subtle.Fprintf(w, "Watching %s, interrupt to stop.\n", args[0])
		return a.Watch(cmd.Context(), args[0], func(d app.Document) { printDocument(w, d) })
	})
	return cmd
}

func digestCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest FILE...",
		Short: "Print the content digest of scene documents",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.RunE = runWithApp(o, nil, func(cmd *cobra.Command, a *app.App, args []string) error {
		var failed []string
		for _, path := range args {
			d, err := a.Digest(path)
			if err != nil {
				warn.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
				failed = append(failed, path)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", d, path)
		}
		if len(failed) > 0 {
			return &ExitError{Code: 1, Message: "cannot digest " + strings.Join(failed, ", ")}
		}
		return nil
	})
	return cmd
}

func blocksCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "List the available block kinds",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = runWithApp(o, nil, func(cmd *cobra.Command, a *app.App, _ []string) error {
		var rows [][]string
		for _, k := range a.Registry().Kinds() {
			rows = append(rows, []string{
				strconv.Itoa(k.OpCode), k.Name, k.Title, k.Category,
				strconv.Itoa(len(k.Inputs)), strconv.Itoa(len(k.Outputs)), k.Description,
			})
		}
		table(cmd.OutOrStdout(), []string{"OP", "NAME", "TITLE", "CATEGORY", "IN", "OUT", "DESCRIPTION"}, rows)
		return nil
	})
	return cmd
}
