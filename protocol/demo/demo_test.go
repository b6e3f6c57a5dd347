// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package demo

import (
	"bytes"
	"io"
	"testing"

	"github.com/Rupas1k/clarity/protocol"
	"github.com/Rupas1k/clarity/source"

	"github.com/golang/protobuf/proto"
	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Demo format", func() {
	var buf bytes.Buffer
	var w *Writer
	BeforeEach(func() {
		buf.Reset()
		w = NewWriter(&buf)
	})

	identify := func(s source.Source) protocol.Kind {
		k, err := Engine{}.Identify(s)
		Expect(err).ToNot(HaveOccurred())
		return k
	}

	DescribeTable("identifies and skips the header",
		func(k Kind, headerSize int64) {
			Expect(w.WriteHeader(k)).To(Succeed())
			Expect(int64(buf.Len())).To(Equal(headerSize))
			Expect(k.HeaderSize()).To(Equal(headerSize))

			s := source.Bytes(buf.Bytes())
			Expect(identify(s)).To(Equal(k))
			Expect(s.Position()).To(Equal(headerSize))
		},
		Entry("Source 1", Source1, int64(12)),
		Entry("Source 2", Source2, int64(16)),
	)

	It("rejects an unknown magic", func() {
		s := source.Bytes([]byte("HL2DEMO\x00\x00\x00\x00\x00"))
		_, err := Engine{}.Identify(s)
		Expect(errors.Cause(err)).To(Equal(ErrUnknownFormat))
	})

	It("returns EOF on a short header", func() {
		s := source.Bytes([]byte("PBDEMS2\x00\x01\x02"))
		_, err := Engine{}.Identify(s)
		Expect(err).To(HaveOccurred())
	})

	It("reads back written packets", func() {
		Expect(w.WriteHeader(Source2)).To(Succeed())
		Expect(w.WritePacket(CommandFileHeader, -1, []byte("header"), false)).To(Succeed())
		Expect(w.WritePacket(CommandPacket, 30, bytes.Repeat([]byte("pixels"), 64), true)).To(Succeed())
		Expect(w.WritePacket(CommandPacket, 31, nil, false)).To(Succeed())
		Expect(w.WriteStop(32)).To(Succeed())
		Expect(w.NumPackets()).To(Equal(int64(4)))
		Expect(w.NumBytes()).To(Equal(int64(buf.Len())))

		s := source.Bytes(buf.Bytes())
		k := identify(s)

		By("reading an uncompressed packet")
		pkt, err := k.NextPacket(s)
		Expect(err).ToNot(HaveOccurred())
		Expect(Command(pkt.Command)).To(Equal(CommandFileHeader))
		Expect(pkt.Tick).To(Equal(int32(-1)))
		Expect(pkt.Compressed).To(BeFalse())
		data, err := pkt.Data()
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(Equal("header"))
		Expect(k.IsTerminal(pkt)).To(BeFalse())

		By("reading a compressed packet")
		pkt, err = k.NextPacket(s)
		Expect(err).ToNot(HaveOccurred())
		Expect(Command(pkt.Command)).To(Equal(CommandPacket))
		Expect(pkt.Compressed).To(BeTrue())
		Expect(pkt.Size).To(BeNumerically("<", 6*64))
		data, err = pkt.Data()
		Expect(err).ToNot(HaveOccurred())
		Expect(data).To(Equal(bytes.Repeat([]byte("pixels"), 64)))

		By("skipping an empty packet")
		pkt, err = k.NextPacket(s)
		Expect(err).ToNot(HaveOccurred())
		Expect(pkt.Tick).To(Equal(int32(31)))
		Expect(pkt.Skip()).To(Succeed())
		Expect(s.Position()).To(Equal(pkt.End()))

		By("reading the stop packet")
		pkt, err = k.NextPacket(s)
		Expect(err).ToNot(HaveOccurred())
		Expect(k.IsTerminal(pkt)).To(BeTrue())
		Expect(pkt.Tick).To(Equal(int32(32)))
		Expect(pkt.Skip()).To(Succeed())

		By("hitting the end of the stream")
		_, err = k.NextPacket(s)
		Expect(err).To(Equal(io.EOF))
	})

	It("fails to skip a truncated packet", func() {
		Expect(w.WriteHeader(Source2)).To(Succeed())
		Expect(w.WritePacket(CommandPacket, 1, []byte("complete"), false)).To(Succeed())
		end := buf.Len()
		Expect(w.WritePacket(CommandPacket, 2, []byte("truncated"), false)).To(Succeed())

		s := source.Bytes(buf.Bytes()[:buf.Len()-3])
		k := identify(s)

		pkt, err := k.NextPacket(s)
		Expect(err).ToNot(HaveOccurred())
		Expect(pkt.Skip()).To(Succeed())
		Expect(s.Position()).To(Equal(int64(end)))

		pkt, err = k.NextPacket(s)
		Expect(err).ToNot(HaveOccurred())
		Expect(pkt.Skip()).To(Equal(io.EOF))
		_, err = pkt.Data()
		Expect(err).To(Equal(io.EOF))
	})

	It("rejects an overlong varint", func() {
		s := source.Bytes([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01})
		_, err := Source2.NextPacket(s)
		Expect(err).To(Equal(errInvalidVarint))
	})

	It("rejects an oversized packet before reading its payload", func() {
		s := source.Bytes([]byte{0x01, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0x0F})
		_, err := Source2.NextPacket(s)
		Expect(errors.Cause(err)).To(Equal(protocol.ErrPacketTooLarge))
	})

	It("refuses to decompress an oversized payload", func() {
		raw := proto.EncodeVarint(protocol.MaxPacketSize + 1)
		pkt := protocol.Packet{Compressed: true, Size: len(raw), Source: source.Bytes(raw)}
		_, err := pkt.Data()
		Expect(errors.Cause(err)).To(Equal(protocol.ErrPacketTooLarge))

		pkt = protocol.Packet{Size: protocol.MaxPacketSize + 1, Source: source.Bytes(nil)}
		_, err = pkt.Data()
		Expect(errors.Cause(err)).To(Equal(protocol.ErrPacketTooLarge))
	})

	It("refuses to write a command with the compression bit", func() {
		Expect(w.WritePacket(CommandPacket|IsCompressed, 0, nil, false)).ToNot(Succeed())
	})

	Context("KindFlag", func() {
		It("parses kind names", func() {
			var kf KindFlag
			Expect(kf.Set("source1")).To(Succeed())
			Expect(kf.Value()).To(Equal(Source1))
			Expect(kf.Set("SOURCE2")).To(Succeed())
			Expect(kf.Value()).To(Equal(Source2))
			Expect(kf.Set("source3")).ToNot(Succeed())
		})
	})
})

func TestDemo(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Testing demo")
}
