// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dataio

import (
	"bytes"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("CountingWriter", func() {
	It("counts bytes", func() {
		var buf bytes.Buffer
		cw := CountingWriter{W: &buf}

		_, err := cw.Write([]byte("ohai"))
		Expect(err).ToNot(HaveOccurred())
		_, err = cw.Write([]byte("!"))
		Expect(err).ToNot(HaveOccurred())

		Expect(cw.Count).To(Equal(int64(5)))
		Expect(buf.String()).To(Equal("ohai!"))
	})
})

func TestDataIO(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Testing dataio")
}
