// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package live

import (
	"os"
	"path/filepath"
	"time"

	"github.com/Rupas1k/clarity/support/logging"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus/testutil"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("watcher", func() {
	var (
		tempDir string
		path    string
		changeC chan string
		w       *watcher
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "watcher_test")
		Expect(err).ToNot(HaveOccurred())

		path = filepath.Join(tempDir, "watched.dem")
		appendFile(path, []byte("ohai"))

		changeC = make(chan string, 16)
		w = nil
	})

	AfterEach(func() {
		if w != nil {
			w.stop()
		}
		Expect(os.RemoveAll(tempDir)).To(Succeed())
	})

	onChange := func(via string) {
		select {
		case changeC <- via:
		default:
		}
	}

	It("reports changes through file notifications", func() {
		var err error
		w, err = startWatcher(path, time.Hour, onChange, logging.Nop)
		Expect(err).ToNot(HaveOccurred())

		appendFile(path, []byte("!"))
		Eventually(changeC, time.Second).Should(Receive(Equal(changeViaEvent)))
	})

	It("ignores notifications for other files in the directory", func() {
		var err error
		w, err = startWatcher(path, time.Hour, onChange, logging.Nop)
		Expect(err).ToNot(HaveOccurred())

		appendFile(filepath.Join(tempDir, "other.dem"), []byte("ohai"))
		Consistently(changeC, 100*time.Millisecond).ShouldNot(Receive())
	})

	It("falls back to polling when no notification arrives", func() {
		// Watch an unrelated directory, so that only the poll can see the change.
		unrelated := filepath.Join(tempDir, "unrelated")
		Expect(os.Mkdir(unrelated, 0755)).To(Succeed())

		fw, err := fsnotify.NewWatcher()
		Expect(err).ToNot(HaveOccurred())
		Expect(fw.Add(unrelated)).To(Succeed())
		w = runWatcher(path, 20*time.Millisecond, fw, onChange, logging.Nop)

		Consistently(changeC, 60*time.Millisecond).ShouldNot(Receive())

		appendFile(path, []byte("!"))
		Eventually(changeC, time.Second).Should(Receive(Equal(changeViaPoll)))

		By("polling a deleted file")
		Expect(os.Remove(path)).To(Succeed())
		Eventually(changeC, time.Second).Should(Receive(Equal(changeViaPoll)))
	})

	It("terminates when its notification channels close", func() {
		var err error
		w, err = startWatcher(path, time.Hour, onChange, logging.Nop)
		Expect(err).ToNot(HaveOccurred())

		errorsBefore := testutil.ToFloat64(watchErrors)
		Expect(w.fw.Close()).To(Succeed())

		Eventually(w.doneC, time.Second).Should(BeClosed())
		Expect(testutil.ToFloat64(watchErrors)).To(Equal(errorsBefore + 1))

		appendFile(path, []byte("!"))
		Consistently(changeC, 100*time.Millisecond).ShouldNot(Receive())
	})
})
