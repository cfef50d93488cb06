package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Container format, version 2:
//
//	[magic "SMRT"(4)][format(1)][record count(8, LE)]
//	then per record:
//	  [key len(4, LE)][key][variant(1)]
//	  [seq len(4, LE)][encoded sequence]
//	  FASTQ only: [qual len(4, LE)][encoded quality]
//
// Payloads are written exactly as held in memory, so save never re-encodes
// and restore never decodes. The v1 magic "TRAC" is accepted on restore
// for migration; saves always emit "SMRT".

var (
	containerMagic = [4]byte{'S', 'M', 'R', 'T'}
	legacyMagic    = [4]byte{'T', 'R', 'A', 'C'}
)

const containerBufferSize = 64 * 1024

// Save writes the whole store to path as a binary container in one pass.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriterSize(f, containerBufferSize)
	if err := s.writeContainer(w); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	s.logger.Info("saved container",
		"path", path,
		"records", len(s.records),
		"format", s.format.String())
	return nil
}

func (s *Store) writeContainer(w *bufio.Writer) error {
	if _, err := w.Write(containerMagic[:]); err != nil {
		return err
	}
	if err := w.WriteByte(byte(s.format)); err != nil {
		return err
	}
	var count [8]byte
	binary.LittleEndian.PutUint64(count[:], uint64(len(s.records)))
	if _, err := w.Write(count[:]); err != nil {
		return err
	}

	for key, rec := range s.records {
		if err := writeBlock(w, []byte(key)); err != nil {
			return err
		}
		if err := w.WriteByte(byte(rec.Kind)); err != nil {
			return err
		}
		if err := writeBlock(w, rec.Seq); err != nil {
			return err
		}
		if rec.Kind == KindFastq {
			if err := writeBlock(w, rec.Qual); err != nil {
				return err
			}
		}
	}
	return nil
}

// Restore replaces the store contents with the records of a container
// file. The store is cleared first, so a failed restore leaves it empty.
// Encoded payloads are taken verbatim; nothing is decoded.
func (s *Store) Restore(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, containerBufferSize)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return fmt.Errorf("restore %s: %w: missing magic", path, ErrBadContainer)
	}
	if magic != containerMagic && magic != legacyMagic {
		return fmt.Errorf("restore %s: %w: magic %q", path, ErrBadContainer, magic[:])
	}

	formatByte, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("restore %s: %w: truncated header", path, ErrBadContainer)
	}
	if formatByte > byte(ProteinFastq) {
		return fmt.Errorf("restore %s: %w: format byte 0x%02x", path, ErrBadContainer, formatByte)
	}

	var countBuf [8]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return fmt.Errorf("restore %s: %w: truncated header", path, ErrBadContainer)
	}
	count := binary.LittleEndian.Uint64(countBuf[:])

	records := make(map[string]Record, count)
	for i := uint64(0); i < count; i++ {
		key, err := readBlock(r)
		if err != nil {
			return fmt.Errorf("restore %s: %w: truncated record %d", path, ErrBadContainer, i)
		}
		kind, err := r.ReadByte()
		if err != nil || kind > byte(KindFastq) {
			return fmt.Errorf("restore %s: %w: truncated record %d", path, ErrBadContainer, i)
		}
		rec := Record{Kind: RecordKind(kind)}
		if rec.Seq, err = readBlock(r); err != nil {
			return fmt.Errorf("restore %s: %w: truncated record %d", path, ErrBadContainer, i)
		}
		if rec.Kind == KindFastq {
			if rec.Qual, err = readBlock(r); err != nil {
				return fmt.Errorf("restore %s: %w: truncated record %d", path, ErrBadContainer, i)
			}
		}
		records[string(key)] = rec
	}

	s.records = records
	s.format = FileFormat(formatByte)

	s.logger.Info("restored container",
		"path", path,
		"records", len(records),
		"format", s.format.String())
	return nil
}

// writeBlock writes a length-prefixed byte block.
func writeBlock(w *bufio.Writer, data []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// readBlock reads a length-prefixed byte block.
func readBlock(r *bufio.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n == 0 {
		return nil, nil
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
