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

import (
	"errors"
	"fmt"

	"github.com/googlegenomics/zmw/internal/genomics"
)

// ErrInvalidInput is returned (wrapped) by Build when it is called without
// sources or with a header that has no read groups.
var ErrInvalidInput = errors.New("invalid input")

// ConsistencyError is returned by Build when two sources declare different
// scrap ZMW types.
type ConsistencyError struct {
	HoleNumber int32
	// Want is the type declared by the first source that declared one.
	Want genomics.ZMWType
	// Got is the conflicting type, declared by the source at Index in query
	// order.
	Got   genomics.ZMWType
	Index int
}

func (err *ConsistencyError) Error() string {
	return fmt.Sprintf("scrap ZMW types do not match (source %d is %v, expected %v)",
		err.Index, err.Got, err.Want)
}

// RegionDerivationError is returned by Build when the high-quality region
// cannot be derived: a single low-quality region touches neither end of the
// stitched read.
type RegionDerivationError struct {
	HoleNumber int32
	LQRegion   genomics.Region
	Length     int
}

func (err *RegionDerivationError) Error() string {
	return fmt.Sprintf("unknown HQREGION for %v in a read of length %d", err.LQRegion, err.Length)
}
