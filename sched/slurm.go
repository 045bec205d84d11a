// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

package sched

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iSach/dawgz/errors"
	"github.com/iSach/dawgz/sched/resource"
	"github.com/iSach/dawgz/workflow"
)

// SlurmConfig configures the Slurm batch backend.
type SlurmConfig struct {
	// Name labels the run. Defaults to a timestamp.
	Name string

	// Dir is where scripts, descriptors and logs are kept; the run
	// writes under Dir/Name. Defaults to ".dawgz".
	Dir string

	// Shell interprets the generated scripts. Defaults to $SHELL, then
	// /bin/sh.
	Shell string

	// Env are default environment directives for jobs declaring none.
	Env []string

	// Settings are default resource directives, overridden per job.
	Settings *workflow.Settings

	// Runner is the argv prefix invoking the payload runner inside the
	// submission script. Required.
	Runner []string

	// SubmitRate caps sbatch invocations per second. Zero means no cap.
	SubmitRate int64
}

// Slurm submits jobs to a Slurm cluster through sbatch. A job's local
// outcome is the externally assigned identifier: results are only
// observable through the cluster, and submitted jobs are not monitored
// after submission.
type Slurm struct {
	cfg    SlurmConfig
	dir    string
	sbatch string
	limit  resource.R
}

// NewSlurm creates a Slurm submission backend: it checks sbatch is
// available and creates the run directory.
func NewSlurm(cfg SlurmConfig) (*Slurm, error) {
	sbatch, err := exec.LookPath("sbatch")
	if err != nil {
		return nil, errors.E(ErrSubmission, "sbatch executable not found", err)
	}
	if len(cfg.Runner) == 0 {
		return nil, errors.E(ErrSubmission, "a payload runner command is required")
	}
	if cfg.Name == "" {
		cfg.Name = time.Now().Format("060102_150405")
	}
	if cfg.Dir == "" {
		cfg.Dir = ".dawgz"
	}
	if cfg.Shell == "" {
		cfg.Shell = os.Getenv("SHELL")
		if cfg.Shell == "" {
			cfg.Shell = "/bin/sh"
		}
	}

	dir, err := filepath.Abs(filepath.Join(cfg.Dir, cfg.Name))
	if err != nil {
		return nil, errors.E(ErrSubmission, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.E(ErrSubmission, err)
	}

	b := &Slurm{
		cfg:    cfg,
		dir:    dir,
		sbatch: sbatch,
	}
	if cfg.SubmitRate > 0 {
		b.limit = resource.Rate(cfg.SubmitRate)
	}
	return b, nil
}

// Satisfy submits every dependency and waits for all of them: the local
// dependency graph is submitted before the job itself so the external
// dependency clause can reference the assigned identifiers. Any failed
// dependency submission means the condition can never be met.
func (b *Slurm) Satisfy(ctx context.Context, s *Scheduler, job *workflow.Job) error {
	deps := job.Dependencies()
	futs := make([]*Future, len(deps))
	for i, d := range deps {
		futs[i] = s.Submit(ctx, d.Job)
	}
	for _, fut := range futs {
		if _, err := fut.Wait(ctx); err != nil {
			return errors.E(ErrNeverSatisfied, job.String(), err)
		}
	}
	return nil
}

// Exec renders the job into a submission script, writes the task
// descriptor beside it and submits the script with sbatch. The returned
// outcome is the external job identifier parsed from the sbatch output.
func (b *Slurm) Exec(ctx context.Context, s *Scheduler, job *workflow.Job) (interface{}, error) {
	tag := s.Tag(job)
	logger := log.With().
		Str("action", "sched.Slurm.Exec()").
		Str("tag", tag).
		Stringer("job", job).
		Logger()

	settings := b.cfg.Settings.Merge(job.Settings())
	if _, ok := settings.Get("clusters"); ok {
		return nil, errors.E(ErrSubmission, fmt.Sprintf(
			"%s: multi-cluster operations are not supported", job))
	}

	clause, err := b.dependencyClause(ctx, s, job)
	if err != nil {
		return nil, err
	}

	descriptor := filepath.Join(b.dir, tag+".json")
	if err := job.Task().Save(descriptor); err != nil {
		return nil, errors.E(ErrSubmission, job.String(), err)
	}

	script := filepath.Join(b.dir, tag+".sh")
	content := b.script(job, tag, settings, clause, descriptor)
	if err := os.WriteFile(script, []byte(content), 0644); err != nil {
		return nil, errors.E(ErrSubmission, job.String(), err)
	}

	if b.limit != nil && !b.limit.Acquire(ctx) {
		return nil, errors.E(ErrSubmission, job.String(), ctx.Err())
	}

	logger.Debug().Str("script", script).Msg("Submitting script.")
	out, err := exec.CommandContext(ctx, b.sbatch, script).Output()
	if err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			diag := strings.TrimSpace(string(exit.Stderr))
			return nil, errors.E(ErrSubmission, job.String(), fmt.Errorf("%s", diag))
		}
		return nil, errors.E(ErrSubmission, job.String(), err)
	}

	id := parseJobID(string(out))
	logger.Debug().Str("jobid", id).Msg("Job submitted.")
	return id, nil
}

// dependencyClause renders the --dependency directive value from the
// resolved external identifiers of the job's dependencies. Satisfy already
// waited on every one of them, so the outcomes are immediate.
func (b *Slurm) dependencyClause(ctx context.Context, s *Scheduler, job *workflow.Job) (string, error) {
	relations := map[workflow.Status]string{
		workflow.Success: "afterok",
		workflow.Failure: "afternotok",
		workflow.Any:     "afterany",
	}

	var parts []string
	for _, d := range job.Dependencies() {
		v, err := s.Submit(ctx, d.Job).Wait(ctx)
		if err != nil {
			return "", errors.E(ErrNeverSatisfied, job.String(), err)
		}
		parts = append(parts, fmt.Sprintf("%s:%v", relations[d.Status], v))
	}

	sep := ","
	if job.Mode() == workflow.WaitAny {
		sep = "?"
	}
	return strings.Join(parts, sep), nil
}

// parseJobID extracts the job identifier from the sbatch --parsable
// output: the first line, ignoring the cluster name after ";".
func parseJobID(out string) string {
	line := out
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}
