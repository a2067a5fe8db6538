package encoder

import (
	"bytes"
	"encoding/binary"
)

const wavHeaderSize = 44

// WavEncoder writes a standard 16-bit mono RIFF/WAVE stream. The header is
// emitted with zero sizes up front and patched on Close.
type WavEncoder struct {
	buf         bytes.Buffer
	totalFrames uint64
	closed      bool
}

func NewWav() *WavEncoder {
	e := &WavEncoder{}
	e.writeHeader(0)
	return e
}

func (e *WavEncoder) writeHeader(dataSize uint32) {
	byteRate := uint32(SampleRate * Channels * BitsPerSample / 8)
	blockAlign := uint16(Channels * BitsPerSample / 8)

	e.buf.WriteString("RIFF")
	binary.Write(&e.buf, binary.LittleEndian, uint32(wavHeaderSize-8)+dataSize)
	e.buf.WriteString("WAVE")
	e.buf.WriteString("fmt ")
	binary.Write(&e.buf, binary.LittleEndian, uint32(16)) // PCM fmt chunk size
	binary.Write(&e.buf, binary.LittleEndian, uint16(1))  // PCM
	binary.Write(&e.buf, binary.LittleEndian, uint16(Channels))
	binary.Write(&e.buf, binary.LittleEndian, uint32(SampleRate))
	binary.Write(&e.buf, binary.LittleEndian, byteRate)
	binary.Write(&e.buf, binary.LittleEndian, blockAlign)
	binary.Write(&e.buf, binary.LittleEndian, uint16(BitsPerSample))
	e.buf.WriteString("data")
	binary.Write(&e.buf, binary.LittleEndian, dataSize)
}

func (e *WavEncoder) EncodeBlock(block []int16) error {
	data := make([]byte, len(block)*2)
	for i, s := range block {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	e.buf.Write(data)
	e.totalFrames += uint64(len(block))
	return nil
}

func (e *WavEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	dataSize := uint32(e.totalFrames * 2)
	raw := e.buf.Bytes()
	binary.LittleEndian.PutUint32(raw[4:], uint32(wavHeaderSize-8)+dataSize)
	binary.LittleEndian.PutUint32(raw[40:], dataSize)
	return nil
}

func (e *WavEncoder) Bytes() []byte {
	return e.buf.Bytes()
}

func (e *WavEncoder) TotalFrames() uint64 {
	return e.totalFrames
}

func (e *WavEncoder) Format() string { return "wav" }
