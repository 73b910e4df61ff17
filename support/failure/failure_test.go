// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package failure

import (
	"io"
	"os"
	"syscall"
	"testing"

	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("failure", func() {
	It("formats and classifies format errors", func() {
		err := Format("bdf", "bad %s value %q", "BBX", "1 x")
		Expect(err).To(MatchError(`bdf: bad BBX value "1 x"`))
		Expect(IsFormat(err)).To(BeTrue())
		Expect(IsFormat(errors.Wrap(err, "loading font.bdf"))).To(BeTrue())
		Expect(IsLookup(err)).To(BeFalse())
	})

	It("wraps underlying errors as format errors", func() {
		Expect(WrapFormat(nil, "amiga", "hunk file header")).To(BeNil())

		err := WrapFormat(io.ErrUnexpectedEOF, "amiga", "hunk file header")
		Expect(err).To(MatchError("amiga: hunk file header: unexpected EOF"))
		Expect(IsFormat(err)).To(BeTrue())
		Expect(errors.Is(err, io.ErrUnexpectedEOF)).To(BeTrue())
	})

	It("classifies lookup errors", func() {
		err := error(&LookupError{Operation: "save", Format: "ttf"})
		Expect(err).To(MatchError("cannot save to format `ttf`"))
		Expect(IsLookup(err)).To(BeTrue())
		Expect((&LookupError{Operation: "load", Format: "ttf"}).Error()).To(Equal("cannot load from format `ttf`"))
	})

	It("classifies missing files", func() {
		Expect(IsNotFound(NotFound("font.yaff", nil))).To(BeTrue())
		Expect(IsNotFound(NotFound("font.yaff", os.ErrNotExist))).To(BeTrue())

		_, err := os.Open("/nonexistent/font.yaff")
		Expect(IsNotFound(err)).To(BeTrue())
	})

	It("classifies vanished consumers", func() {
		Expect(IsTransportClosed(&TransportClosedError{Name: "stdout"})).To(BeTrue())
		Expect(IsTransportClosed(errors.Wrap(syscall.EPIPE, "writing"))).To(BeTrue())
		Expect(IsTransportClosed(io.ErrClosedPipe)).To(BeTrue())
		Expect(IsTransportClosed(io.EOF)).To(BeFalse())
	})
})

func TestFailure(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Test failure")
}
