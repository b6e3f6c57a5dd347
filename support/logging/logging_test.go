// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package logging

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Logging", func() {
	It("Must replaces a nil logger with Nop", func() {
		Expect(Must(nil)).To(Equal(Nop))
	})

	It("Must returns a non-nil logger unchanged", func() {
		l, _, err := NewZap("debug")
		Expect(err).ToNot(HaveOccurred())
		Expect(Must(l)).To(BeIdenticalTo(l))
	})

	It("NewZap rejects unknown levels", func() {
		_, _, err := NewZap("chatty")
		Expect(err).To(HaveOccurred())
	})
})

func TestLogging(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Testing logging")
}
