// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

package sched

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iSach/dawgz/workflow"
)

// directiveAliases maps portable setting keys to the sbatch option names.
var directiveAliases = map[string]string{
	"cpus":      "cpus-per-task",
	"gpus":      "gpus-per-task",
	"ram":       "mem",
	"memory":    "mem",
	"timelimit": "time",
}

// script renders the whole submission script for a job.
func (b *Slurm) script(
	job *workflow.Job,
	tag string,
	settings *workflow.Settings,
	depClause string,
	descriptor string,
) string {
	lines := []string{
		"#!" + b.cfg.Shell,
		"#",
		"#SBATCH --job-name=" + job.Name(),
	}

	if arr := job.Array(); arr != nil {
		lines = append(lines, "#SBATCH --array="+arr.String())
	}

	logfile := tag + ".log"
	if job.Array() != nil {
		logfile = tag + "_%a.log"
	}
	lines = append(lines,
		"#SBATCH --output="+filepath.Join(b.dir, logfile),
		"#",
	)

	directives := renderDirectives(settings)
	lines = append(lines, directives...)
	if len(directives) > 0 {
		lines = append(lines, "#")
	}

	if depClause != "" {
		lines = append(lines,
			"#SBATCH --dependency="+depClause,
			"#",
		)
	}

	lines = append(lines,
		"#SBATCH --export=ALL",
		"#SBATCH --parsable",
		"",
	)

	env := job.Env()
	if len(env) == 0 {
		env = b.cfg.Env
	}
	if len(env) > 0 {
		lines = append(lines, env...)
		lines = append(lines, "")
	}

	payload := append(append([]string(nil), b.cfg.Runner...),
		"--descriptor", descriptor)
	if job.Array() != nil {
		payload = append(payload, "--index", "$SLURM_ARRAY_TASK_ID")
	}
	lines = append(lines, strings.Join(payload, " "), "")

	return strings.Join(lines, "\n")
}

// renderDirectives renders resource settings as sbatch directives in
// insertion order, applying the option aliases. A true boolean renders as
// a bare flag, a false one is omitted, anything else as key=value.
func renderDirectives(settings *workflow.Settings) []string {
	var lines []string
	settings.Each(func(key string, value interface{}) {
		if alias, ok := directiveAliases[key]; ok {
			key = alias
		}
		switch v := value.(type) {
		case bool:
			if v {
				lines = append(lines, "#SBATCH --"+key)
			}
		default:
			lines = append(lines, fmt.Sprintf("#SBATCH --%s=%v", key, v))
		}
	})
	return lines
}
