// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package demo

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// KindFlag is a pflag.Value implementation that stores a Kind.
type KindFlag Kind

var _ pflag.Value = (*KindFlag)(nil)

func (kf *KindFlag) String() string { return Kind(*kf).String() }

// Set implements pflag.Value.
func (kf *KindFlag) Set(v string) error {
	for _, k := range []Kind{Source1, Source2} {
		if strings.EqualFold(v, k.String()) {
			*kf = KindFlag(k)
			return nil
		}
	}
	return errors.Errorf("unknown demo kind: %q", v)
}

// Type implements pflag.Value.
func (kf *KindFlag) Type() string { return "demo.Kind" }

// Value returns the Kind held by this flag.
func (kf KindFlag) Value() Kind { return Kind(kf) }
