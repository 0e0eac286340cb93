package fmindex

import (
	"bytes"
	"context"
	"encoding/binary"
	"io/ioutil"

	"github.com/blainsmith/seahash"
	"github.com/golang/snappy"
	grailerrors "github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/minio/highwayhash"
	"github.com/pkg/errors"

	"github.com/bio-fmindex/fmindex/alphabet"
	"github.com/bio-fmindex/fmindex/sais"
)

// saFileVersion and oTableFileVersion gate the on-disk formats. Bumping
// either forces every existing cache to rebuild, since loadSA/loadOTable
// reject a header whose version doesn't match.
const (
	saFileVersion     = 1
	oTableFileVersion = 1
)

// fingerprintKey is the fixed highwayhash key used to fingerprint a
// reference's remapped bytes. It is not a secret; it only needs to be
// stable across runs so a fingerprint computed today matches one computed
// tomorrow over the same reference.
var fingerprintKey [highwayhash.Size]byte

func fingerprint(codes []byte) []byte {
	return highwayhash.Sum(codes, fingerprintKey[:])
}

// BuildIndexCached behaves like BuildIndex, but first tries to load the
// suffix array and O-table from saPath/oTablePath. A missing file, a
// version/shape mismatch, a checksum failure, or a reference fingerprint
// mismatch all silently fall back to rebuilding that artifact and writing
// it back out (spec §4.4, §6, §7: DecodeError and IoError never prevent a
// rebuild).
func BuildIndexCached(ctx context.Context, reference []byte, alpha alphabet.Alphabet, cfg Config, saPath, oTablePath string) (*Index, error) {
	if cfg.Spacing < 1 {
		return nil, errors.Errorf("fmindex: spacing must be >= 1, got %d", cfg.Spacing)
	}
	codes, err := alpha.EncodeReference(reference)
	if err != nil {
		return nil, err
	}
	if len(codes) < 2 {
		return nil, EmptyReference{}
	}

	sa, err := loadSA(ctx, saPath, codes)
	if err != nil {
		log.Debug.Printf("fmindex: rebuilding suffix array for %s: %v", saPath, err)
		sa = nil
	}
	if sa == nil {
		sa = buildAndSaveSA(ctx, saPath, codes, alpha.Size())
	}

	ot, err := loadOTable(ctx, oTablePath, codes, sa, alpha.Size(), cfg.Spacing)
	if err != nil {
		log.Debug.Printf("fmindex: rebuilding O-table for %s: %v", oTablePath, err)
		ot = nil
	}
	if ot == nil {
		ot = buildOTable(codes, sa, alpha.Size(), cfg.Spacing)
		if saveErr := saveOTable(ctx, oTablePath, ot); saveErr != nil {
			log.Error.Printf("fmindex: failed to persist O-table to %s: %v", oTablePath, saveErr)
		}
	}

	return &Index{
		alphabet: alpha,
		codes:    codes,
		sa:       sa,
		cTable:   buildCTable(codes, alpha.Size()),
		oTable:   ot,
	}, nil
}

func buildAndSaveSA(ctx context.Context, path string, codes []byte, sigma int) []int32 {
	sa := sais.Build(codes, sigma)
	if err := saveSA(ctx, path, codes, sa); err != nil {
		log.Error.Printf("fmindex: failed to persist suffix array to %s: %v", path, err)
	}
	return sa
}

// --- suffix array file ---
//
// header: version byte, n uint64, fingerprint (highwayhash.Size bytes),
// checksum uint64 (seahash of the uncompressed payload).
// payload: n little-endian uint32 SA entries, snappy-compressed.

func saveSA(ctx context.Context, path string, codes []byte, sa []int32) error {
	payload := make([]byte, 4*len(sa))
	for i, v := range sa {
		binary.LittleEndian.PutUint32(payload[4*i:], uint32(v))
	}
	h := seahash.New()
	_, _ = h.Write(payload)

	var hdr bytes.Buffer
	hdr.WriteByte(saFileVersion)
	writeUint64(&hdr, uint64(len(codes)))
	hdr.Write(fingerprint(codes))
	writeUint64(&hdr, h.Sum64())

	return writeArtifact(ctx, path, hdr.Bytes(), snappy.Encode(nil, payload))
}

func loadSA(ctx context.Context, path string, codes []byte) ([]int32, error) {
	hdr, payload, err := readArtifact(ctx, path)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(hdr)
	version, _ := r.ReadByte()
	if version != saFileVersion {
		return nil, &DecodeError{Reason: "suffix array file version mismatch"}
	}
	n, err := readUint64(r)
	if err != nil || n != uint64(len(codes)) {
		return nil, &DecodeError{Reason: "suffix array file length mismatch"}
	}
	fp := make([]byte, highwayhash.Size)
	if _, err := r.Read(fp); err != nil || !bytes.Equal(fp, fingerprint(codes)) {
		return nil, &DecodeError{Reason: "suffix array file fingerprint mismatch"}
	}
	wantChecksum, err := readUint64(r)
	if err != nil {
		return nil, &DecodeError{Reason: "truncated suffix array header"}
	}

	decoded, err := snappy.Decode(nil, payload)
	if err != nil {
		return nil, &DecodeError{Reason: "corrupt suffix array payload: " + err.Error()}
	}
	h := seahash.New()
	_, _ = h.Write(decoded)
	if h.Sum64() != wantChecksum {
		return nil, &DecodeError{Reason: "suffix array checksum mismatch"}
	}
	if len(decoded) != 4*len(codes) {
		return nil, &DecodeError{Reason: "suffix array payload size mismatch"}
	}

	sa := make([]int32, len(codes))
	for i := range sa {
		sa[i] = int32(binary.LittleEndian.Uint32(decoded[4*i:]))
	}
	return sa, nil
}

// --- O-table file ---
//
// header: version byte, n uint64, sigma uint32, spacing uint32, fingerprint,
// sentinelFirstOccAt uint64, checksum uint64.
// payload: (sigma-1) rows of sampledRows little-endian uint32 each,
// snappy-compressed.

func saveOTable(ctx context.Context, path string, ot *oTable) error {
	sampledRows := len(ot.codes)/ot.spacing + 1
	payload := make([]byte, 4*(ot.sigma-1)*sampledRows)
	off := 0
	for a := 0; a < ot.sigma-1; a++ {
		for _, v := range ot.rows[a] {
			binary.LittleEndian.PutUint32(payload[off:], uint32(v))
			off += 4
		}
	}
	h := seahash.New()
	_, _ = h.Write(payload)

	var hdr bytes.Buffer
	hdr.WriteByte(oTableFileVersion)
	writeUint64(&hdr, uint64(len(ot.codes)))
	writeUint32(&hdr, uint32(ot.sigma))
	writeUint32(&hdr, uint32(ot.spacing))
	hdr.Write(fingerprint(ot.codes))
	writeUint64(&hdr, uint64(ot.sentinelFirstOccAt))
	writeUint64(&hdr, h.Sum64())

	return writeArtifact(ctx, path, hdr.Bytes(), snappy.Encode(nil, payload))
}

func loadOTable(ctx context.Context, path string, codes []byte, sa []int32, sigma, spacing int) (*oTable, error) {
	hdr, payload, err := readArtifact(ctx, path)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(hdr)
	version, _ := r.ReadByte()
	if version != oTableFileVersion {
		return nil, &DecodeError{Reason: "O-table file version mismatch"}
	}
	n, err := readUint64(r)
	if err != nil || n != uint64(len(codes)) {
		return nil, &DecodeError{Reason: "O-table file length mismatch"}
	}
	fileSigma, err := readUint32(r)
	if err != nil || int(fileSigma) != sigma {
		return nil, &DecodeError{Reason: "O-table file alphabet size mismatch"}
	}
	fileSpacing, err := readUint32(r)
	if err != nil || int(fileSpacing) != spacing {
		return nil, &DecodeError{Reason: "O-table file spacing mismatch"}
	}
	fp := make([]byte, highwayhash.Size)
	if _, err := r.Read(fp); err != nil || !bytes.Equal(fp, fingerprint(codes)) {
		return nil, &DecodeError{Reason: "O-table file fingerprint mismatch"}
	}
	sentinelFirstOccAt, err := readUint64(r)
	if err != nil {
		return nil, &DecodeError{Reason: "truncated O-table header"}
	}
	wantChecksum, err := readUint64(r)
	if err != nil {
		return nil, &DecodeError{Reason: "truncated O-table header"}
	}

	decoded, err := snappy.Decode(nil, payload)
	if err != nil {
		return nil, &DecodeError{Reason: "corrupt O-table payload: " + err.Error()}
	}
	h := seahash.New()
	_, _ = h.Write(decoded)
	if h.Sum64() != wantChecksum {
		return nil, &DecodeError{Reason: "O-table checksum mismatch"}
	}

	sampledRows := len(codes)/spacing + 1
	if len(decoded) != 4*(sigma-1)*sampledRows {
		return nil, &DecodeError{Reason: "O-table payload size mismatch"}
	}
	rows := make([][]int32, sigma-1)
	off := 0
	for a := range rows {
		rows[a] = make([]int32, sampledRows)
		for q := range rows[a] {
			rows[a][q] = int32(binary.LittleEndian.Uint32(decoded[off:]))
			off += 4
		}
	}

	return &oTable{
		codes:              codes,
		sa:                 sa,
		sigma:              sigma,
		spacing:            spacing,
		rows:               rows,
		sentinelFirstOccAt: int(sentinelFirstOccAt),
	}, nil
}

// --- shared header/payload framing ---
//
// on disk: uint32 header length, header bytes, payload bytes (the rest of
// the file).

func writeArtifact(ctx context.Context, path string, hdr, payload []byte) error {
	out, err := file.Create(ctx, path)
	if err != nil {
		return &IoError{Op: "create", Path: path, Err: grailerrors.E(err, "fmindex: creating artifact", path)}
	}
	w := out.Writer(ctx)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(hdr)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		_ = out.Close(ctx)
		return &IoError{Op: "write", Path: path, Err: grailerrors.E(err, "fmindex: writing artifact header", path)}
	}
	if _, err := w.Write(hdr); err != nil {
		_ = out.Close(ctx)
		return &IoError{Op: "write", Path: path, Err: grailerrors.E(err, "fmindex: writing artifact header", path)}
	}
	if _, err := w.Write(payload); err != nil {
		_ = out.Close(ctx)
		return &IoError{Op: "write", Path: path, Err: grailerrors.E(err, "fmindex: writing artifact payload", path)}
	}
	if err := out.Close(ctx); err != nil {
		return &IoError{Op: "close", Path: path, Err: grailerrors.E(err, "fmindex: closing artifact", path)}
	}
	return nil
}

func readArtifact(ctx context.Context, path string) (hdr, payload []byte, err error) {
	in, openErr := file.Open(ctx, path)
	if openErr != nil {
		return nil, nil, &IoError{Op: "open", Path: path, Err: grailerrors.E(openErr, "fmindex: opening artifact", path)}
	}
	defer func() { _ = in.Close(ctx) }()

	raw, readErr := ioutil.ReadAll(in.Reader(ctx))
	if readErr != nil {
		return nil, nil, &IoError{Op: "read", Path: path, Err: grailerrors.E(readErr, "fmindex: reading artifact", path)}
	}
	if len(raw) < 4 {
		return nil, nil, &DecodeError{Reason: "truncated artifact"}
	}
	hdrLen := int(binary.LittleEndian.Uint32(raw[:4]))
	if len(raw) < 4+hdrLen {
		return nil, nil, &DecodeError{Reason: "truncated artifact header"}
	}
	return raw[4 : 4+hdrLen], raw[4+hdrLen:], nil
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}
