// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dataio_test

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	"github.com/pluess/monobit/support/dataio"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("I/O helpers", func() {
	Context("ReadFull", func() {
		It("fills the buffer from a reader that returns one byte at a time", func() {
			buf := make([]byte, 3)
			n, err := dataio.ReadFull(iotest.OneByteReader(bytes.NewReader([]byte{1, 2, 3, 4})), buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(3))
			Expect(buf).To(Equal([]byte{1, 2, 3}))
		})

		It("distinguishes a short read from an empty one", func() {
			buf := make([]byte, 3)
			n, err := dataio.ReadFull(bytes.NewReader([]byte{1}), buf)
			Expect(err).To(Equal(io.ErrUnexpectedEOF))
			Expect(n).To(Equal(1))

			_, err = dataio.ReadFull(bytes.NewReader(nil), buf)
			Expect(err).To(Equal(io.EOF))
		})
	})

	Context("Skip", func() {
		It("discards exactly n bytes", func() {
			r := bytes.NewReader([]byte{1, 2, 3})
			Expect(dataio.Skip(r, 2)).To(Succeed())
			Expect(r.Len()).To(Equal(1))
		})

		It("fails when the reader ends early", func() {
			Expect(dataio.Skip(bytes.NewReader([]byte{1}), 2)).To(Equal(io.ErrUnexpectedEOF))
		})
	})
})

func TestDataIO(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Test dataio")
}
