// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package pygen

import "strings"

// runPrelude runs the configured prelude against the current variables.
// Diagnostics it raises go to the normal reporter.
func (r *Runtime) runPrelude() {
	if strings.TrimSpace(r.prelude) == "" {
		return
	}
	r.log.Debug().Int("bytes", len(r.prelude)).Msg("prelude")
	r.evaluator.Run(strings.Split(r.prelude, "\n"))
}
