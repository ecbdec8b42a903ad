// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package recommend ranks catalog programs for a student profile.
//
// A request flows through four stages:
//
//  1. BuildQueries expands the profile into weighted query strings.
//  2. FuseScores scores every program against the queries twice, once by
//     embedding similarity (weighted) and once by BM25 (unweighted),
//     min-max normalizes each channel to [0,100] and blends them with alpha.
//  3. ScoreNumeric applies the GPA gate and computes the grade match,
//     the precomputed automation/duration component and preference boosts.
//  4. Rank combines everything:
//
//	final = (1-beta)*text + beta*grade*100 + gamma*numeric + boost
//
// and returns eligible programs by descending score, ties in catalog order,
// truncated to TopN.
//
// # Usage
//
//	r, err := recommend.NewRecommender(idx, embedder)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	results, err := r.Recommend(ctx, profile, recommend.WithTopN(5))
//
// Stages 2 and 3 are independent and run concurrently. Only query
// embedding can block; ctx bounds it.
//
// # Monitoring
//
// A Monitor observes each stage. The default monitor does nothing; the
// metrics package provides a Prometheus implementation.
package recommend
