package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sakshi-kadian/aurelius/internal/app"
	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/graph"
	"github.com/sakshi-kadian/aurelius/pkg/loader"
	loaderio "github.com/sakshi-kadian/aurelius/pkg/loader/io"
	"github.com/sakshi-kadian/aurelius/pkg/loader/pdf"
	s3loader "github.com/sakshi-kadian/aurelius/pkg/loader/s3"
	"github.com/sakshi-kadian/aurelius/pkg/loader/web"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/cobra"
)

const s3Scheme = "s3://"

type opener func(ctx context.Context) (*app.App, error)

func newRootCmd(open opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "aurelius",
		Short: "Aurelius - neuro-symbolic knowledge graph pipeline",
		Long: `Aurelius extracts subject-predicate-object facts from documents with a
language model, merges them into a knowledge graph and answers questions
by combining retrieved passages with the shortest path between entities.`,
		SilenceUsage: true,
	}

	ingestCmd := &cobra.Command{
		Use:   "ingest [path|url|s3://key]...",
		Short: "Ingest documents into the knowledge graph",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				return runIngest(cmd, a, args)
			})
		},
	}
	rootCmd.AddCommand(ingestCmd)

	graphCmd := &cobra.Command{
		Use:   "graph",
		Short: "Print a node/link projection of the graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				return runGraph(cmd, a)
			})
		},
	}
	graphCmd.Flags().Int("limit", graph.DefaultProjectionLimit, "Maximum number of links")
	rootCmd.AddCommand(graphCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "reason [query]",
		Short: "Answer a question from the graph and the indexed passages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				res, err := a.Reasoning.Answer(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "path [start] [end]",
		Short: "Find the shortest connection between two entities",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				return runPath(cmd, a, args[0], args[1])
			})
		},
	})

	return rootCmd
}

func withApp(cmd *cobra.Command, open opener, fn func(a *app.App) error) error {
	a, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	return fn(a)
}

func runIngest(cmd *cobra.Command, a *app.App, args []string) error {
	var failed error
	for _, arg := range args {
		file, err := fileFor(a, arg)
		if err != nil {
			return err
		}

		res, err := a.Graph.Ingest(cmd.Context(), file, a.AI, a.GraphStore, a.ChunkStore)
		if err != nil {
			if !errors.Is(err, graph.ErrInputDocument) {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %v\n", arg, err)
			failed = err
			continue
		}
		if err := printJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
	}
	return failed
}

func fileFor(a *app.App, arg string) (loader.GraphFile, error) {
	id, err := gonanoid.New()
	if err != nil {
		return loader.GraphFile{}, err
	}

	params := loader.NewGraphFileParams{ID: id, FilePath: arg}
	switch {
	case strings.HasPrefix(arg, s3Scheme):
		if a.S3 == nil {
			return loader.GraphFile{}, fmt.Errorf("%s needs object storage, set AWS_BUCKET", arg)
		}
		params.FilePath = strings.TrimPrefix(arg, s3Scheme)
		params.Loader = s3loader.NewS3GraphFileLoaderWithClient(a.Config.AWSBucket, a.S3)
	case loader.DetectFileType(arg) == loader.GraphFileTypeWeb:
		params.Loader = web.NewWebGraphLoader()
		return loader.NewGraphWebFile(params), nil
	default:
		params.Loader = loaderio.NewIOGraphFileLoader()
	}

	if loader.DetectFileType(params.FilePath) == loader.GraphFileTypePDF {
		params.Loader = pdf.NewPDFGraphLoader(params.Loader)
		return loader.NewGraphPDFFile(params), nil
	}
	return loader.NewGraphDocumentFile(params), nil
}

func runGraph(cmd *cobra.Command, a *app.App) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	proj, err := a.Projector.Project(cmd.Context(), min(limit, graph.MaxProjectionLimit))
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), proj)
}

type pathOutput struct {
	Start string                `json:"start"`
	End   string                `json:"end"`
	Path  *common.ReasoningPath `json:"path"`
}

func runPath(cmd *cobra.Command, a *app.App, start, end string) error {
	path, ok, err := a.Reasoner.FindPath(cmd.Context(), start, end)
	if err != nil {
		return err
	}

	out := pathOutput{Start: start, End: end}
	if ok {
		out.Path = &path
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
