// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package export

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/memorygraph/services/retrieval"
)

// DebugQueries holds graph-query strings reconstructing an exploration so
// a reviewer can visualize it in the store's browser. The contract is
// textual reconstructability; that the queries execute is a useful
// accident.
type DebugQueries struct {
	// PathsCombined is a single multi-MATCH query covering every path.
	PathsCombined string `json:"paths_combined"`

	// IndividualPaths holds one query per path, in path order.
	IndividualPaths []string `json:"individual_paths"`
}

// ToDebugQueries formats a retrieval result as reconstructable queries.
//
// # Description
//
//	Path k renders its nodes as aliases n{k}_0, n{k}_1, ... matched on
//	literal ids (backslash and double quote escaped), chained with
//	-[:RELATES]-, bound to path variable p{k}. The combined query joins
//	all patterns in one MATCH and returns every p{k}.
//
// # Thread Safety
//
// Pure function; the input is not mutated.
func ToDebugQueries(result *retrieval.RetrievalResult) DebugQueries {
	seed := seedID(result)

	patterns := make([]string, 0, len(result.Paths))
	for pathIdx, path := range result.Paths {
		nodeIDs := []string{seed}
		for _, step := range path.Steps {
			nodeIDs = append(nodeIDs, step.ToNode.ID)
		}

		nodePatterns := make([]string, len(nodeIDs))
		for nodeIdx, nodeID := range nodeIDs {
			alias := fmt.Sprintf("n%d_%d", pathIdx, nodeIdx)
			nodePatterns[nodeIdx] = cypherNodePattern(alias, nodeID)
		}
		patterns = append(patterns, strings.Join(nodePatterns, "-[:RELATES]-"))
	}

	individual := make([]string, len(patterns))
	for idx, pattern := range patterns {
		individual[idx] = fmt.Sprintf("MATCH p%d = %s RETURN p%d", idx, pattern, idx)
	}

	combined := ""
	if len(patterns) > 0 {
		bound := make([]string, len(patterns))
		returns := make([]string, len(patterns))
		for idx, pattern := range patterns {
			bound[idx] = fmt.Sprintf("p%d = %s", idx, pattern)
			returns[idx] = fmt.Sprintf("p%d", idx)
		}
		combined = "MATCH " + strings.Join(bound, ", ") + " RETURN " + strings.Join(returns, ", ")
	}

	return DebugQueries{
		PathsCombined:   combined,
		IndividualPaths: individual,
	}
}
