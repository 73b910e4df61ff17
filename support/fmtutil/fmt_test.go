// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package fmtutil

import (
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("HexSlice", func() {
	It("renders bytes as hex and printable ASCII", func() {
		Expect(fmt.Sprint(HexSlice("STARTFONT "))).To(Equal(`53 54 41 52 54 46 4F 4E 54 20 ("STARTFONT ")`))
		Expect(HexSlice{0x00, 0x00, 0x03, 0xF3}.String()).To(Equal(`00 00 03 F3 ("....")`))
		Expect(HexSlice(nil).String()).To(Equal(` ("")`))
	})
})

func TestFmtUtil(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Test fmtutil")
}
