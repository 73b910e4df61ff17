// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package byteslicereader

import (
	"io"
	"io/ioutil"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("R", func() {
	var r *R

	BeforeEach(func() {
		r = &R{Buffer: []byte{0, 1, 2, 3}}
	})

	It("reads everything, then returns EOF", func() {
		data, err := ioutil.ReadAll(r)
		Expect(err).ToNot(HaveOccurred())
		Expect(data).To(Equal([]byte{0, 1, 2, 3}))

		_, err = r.ReadByte()
		Expect(err).To(Equal(io.EOF))
		Expect(r.Remaining()).To(Equal(0))
	})

	It("reads in parts", func() {
		buf := make([]byte, 3)
		n, err := r.Read(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(buf[:n]).To(Equal([]byte{0, 1, 2}))

		n, err = r.Read(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(buf[:n]).To(Equal([]byte{3}))

		_, err = r.Read(buf)
		Expect(err).To(Equal(io.EOF))
	})

	DescribeTable("seeks",
		func(offset int64, whence int, pos int64, next int) {
			_, err := r.ReadByte()
			Expect(err).ToNot(HaveOccurred())

			p, err := r.Seek(offset, whence)
			Expect(err).ToNot(HaveOccurred())
			Expect(p).To(Equal(pos))

			b, err := r.ReadByte()
			if next < 0 {
				Expect(err).To(Equal(io.EOF))
			} else {
				Expect(err).ToNot(HaveOccurred())
				Expect(b).To(Equal(byte(next)))
			}
		},
		Entry("from the start", int64(2), io.SeekStart, int64(2), 2),
		Entry("from the current position", int64(1), io.SeekCurrent, int64(2), 2),
		Entry("back from the current position", int64(-1), io.SeekCurrent, int64(0), 0),
		Entry("from the end", int64(-1), io.SeekEnd, int64(3), 3),
		Entry("to the end", int64(0), io.SeekEnd, int64(4), -1),
		Entry("past the end", int64(10), io.SeekStart, int64(10), -1),
	)

	It("refuses to seek before the start", func() {
		_, err := r.Seek(-5, io.SeekEnd)
		Expect(err).To(HaveOccurred())
	})

	It("peeks and takes slices of the buffer", func() {
		_, err := r.Seek(1, io.SeekStart)
		Expect(err).ToNot(HaveOccurred())

		v := r.Peek(2)
		Expect(v).To(Equal([]byte{1, 2}))
		Expect(&v[0]).To(BeIdenticalTo(&r.Buffer[1]))

		v, err = r.Next(2)
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal([]byte{1, 2}))
		Expect(r.Remaining()).To(Equal(1))

		v, err = r.Next(5)
		Expect(err).To(Equal(io.ErrUnexpectedEOF))
		Expect(v).To(Equal([]byte{3}))
	})

	It("copies when told to", func() {
		r.AlwaysCopy = true
		v := r.Peek(2)
		v[0] = 9
		Expect(r.Buffer[0]).To(Equal(byte(0)))
	})
})

func TestByteSliceReader(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Test byteslicereader")
}
