package render

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/yumyai/snpview/pkg/model"
)

// PipelineError wraps a pipeline failure together with whatever the
// plotting command printed, so the UI can show more than "exit 1".
type PipelineError struct {
	Output string
	Err    error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("render pipeline: %s - %s", e.Err, e.Output)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Pipeline produces plot artifacts for a validated query. The core
// treats it as an opaque blocking call.
type Pipeline interface {
	Render(q model.Query, files *model.FileSet) ([]Artifact, error)
}

// ExecPipeline shells out to an external plotting command, one
// invocation per render. The command receives the window parameters
// and every registered file, and writes its plots into a fresh
// directory under OutDir.
//
// snp_plotter --chrom chr1 --pos 50000 --flank 1000 --out DIR \
//             --reference ref.fa --peaks peaks.bed --signal mpra.tsv
type ExecPipeline struct {
	Command string
	OutDir  string
}

func (p *ExecPipeline) Render(q model.Query, files *model.FileSet) ([]Artifact, error) {

	if err := os.MkdirAll(p.OutDir, 0o755); err != nil {
		return nil, &PipelineError{Err: err}
	}

	outDir, err := os.MkdirTemp(p.OutDir, "render-")
	if err != nil {
		return nil, &PipelineError{Err: err}
	}

	args := []string{
		"--chrom", q.Chromosome,
		"--pos", strconv.FormatInt(q.Position, 10),
		"--flank", strconv.FormatInt(q.Flank, 10),
		"--out", outDir,
	}
	for _, f := range files.All() {
		args = append(args, "--"+f.Role.String(), f.Path)
	}

	cmd := exec.Command(p.Command, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &PipelineError{Output: string(output), Err: err}
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, &PipelineError{Err: err}
	}

	var artifacts []Artifact
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Name: entry.Name(),
			Path: filepath.Join(outDir, entry.Name()),
		})
	}

	if len(artifacts) == 0 {
		return nil, &PipelineError{
			Output: string(output),
			Err:    fmt.Errorf("plotter produced no output files in %s", outDir),
		}
	}

	return artifacts, nil
}
