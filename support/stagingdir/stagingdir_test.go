// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package stagingdir

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("D", func() {
	var tdir string
	var sd *D

	BeforeEach(func() {
		var err error
		tdir, err = ioutil.TempDir("", "stagingdir_test")
		Expect(err).ToNot(HaveOccurred())

		sd, err = New(tdir, ".staging")
		Expect(err).ToNot(HaveOccurred())
		Expect(ioutil.WriteFile(sd.Path("font.bdf"), []byte("STARTFONT 2.1\n"), 0644)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(tdir)).To(Succeed())
	})

	It("moves its contents into place on commit", func() {
		dest := filepath.Join(tdir, "fonts")
		Expect(sd.Commit(dest)).To(Succeed())
		Expect(sd.Active()).To(BeFalse())
		Expect(sd.Destroy()).To(Succeed())

		data, err := ioutil.ReadFile(filepath.Join(dest, "font.bdf"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(Equal("STARTFONT 2.1\n"))
		Expect(sd.Commit(dest)).ToNot(Succeed())
	})

	It("replaces an existing destination", func() {
		dest := filepath.Join(tdir, "fonts")
		Expect(os.Mkdir(dest, 0755)).To(Succeed())
		Expect(ioutil.WriteFile(filepath.Join(dest, "old.bdf"), nil, 0644)).To(Succeed())

		Expect(sd.Commit(dest)).To(Succeed())
		Expect(filepath.Join(dest, "old.bdf")).ToNot(BeAnExistingFile())
		Expect(filepath.Join(dest, "font.bdf")).To(BeAnExistingFile())
	})

	It("deletes its contents on destroy", func() {
		p := sd.Path(".")
		Expect(sd.Destroy()).To(Succeed())
		Expect(p).ToNot(BeADirectory())
	})
})

func TestStagingDir(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Test stagingdir")
}
