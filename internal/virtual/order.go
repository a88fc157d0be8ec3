// Copyright 2026 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package virtual

import "sort"

// sortSources orders sources by (QueryStart, QueryEnd).  Sources with equal
// keys keep their relative order.
func sortSources(sources []Source) {
	sort.SliceStable(sources, func(i, j int) bool {
		if a, b := sources[i].QueryStart(), sources[j].QueryStart(); a != b {
			return a < b
		}
		return sources[i].QueryEnd() < sources[j].QueryEnd()
	})
}
