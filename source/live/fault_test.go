// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

//go:build linux

package live

import (
	"os"
	"path/filepath"

	"github.com/Rupas1k/clarity/source"
	"github.com/Rupas1k/clarity/support/mmap"

	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var faultSink byte

var _ = Describe("guardFault", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "fault_test")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(tempDir)).To(Succeed())
	})

	It("passes through the result of a successful call", func() {
		Expect(guardFault(func() error { return nil })).To(Succeed())
	})

	It("converts a fault on a truncated mapping into ErrFault", func() {
		path := filepath.Join(tempDir, "truncated")
		Expect(os.WriteFile(path, make([]byte, 8192), 0644)).To(Succeed())

		fd, err := os.Open(path)
		Expect(err).ToNot(HaveOccurred())
		defer fd.Close()

		v, err := mmap.Map(fd, 8192)
		Expect(err).ToNot(HaveOccurred())
		defer v.Unmap()

		Expect(os.Truncate(path, 0)).To(Succeed())

		err = guardFault(func() error {
			faultSink = v.Bytes()[4096]
			return nil
		})
		Expect(errors.Cause(err)).To(Equal(source.ErrFault))
	})
})
