// Package multipart orchestrates multipart uploads: planning, concurrent
// part transfer with bounded buffering, completion, and abort on failure.
package multipart

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"pkt.systems/pslog"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/planner"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/rest"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/objtypes"
)

const (
	// DefaultConcurrency is the worker count when none is configured.
	DefaultConcurrency = 4

	// abortTimeout bounds the cleanup call after a failed upload. The
	// abort runs on a detached context because the failure being cleaned
	// up may be the caller's own cancellation.
	abortTimeout = 30 * time.Second
)

// API is the transport surface the uploader needs. *rest.Client
// implements it.
type API interface {
	PutObject(ctx context.Context, in *rest.PutObjectInput) (*rest.PutObjectOutput, error)
	CreateMultipartUpload(ctx context.Context, in *rest.CreateMultipartInput) (string, error)
	UploadPart(ctx context.Context, in *rest.UploadPartInput) (string, error)
	CompleteMultipartUpload(ctx context.Context, bucket, key, uploadID string, parts []rest.CompletedPart) (*rest.CompleteMultipartUploadResult, error)
	AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error
}

// Input describes one upload.
type Input struct {
	Bucket string
	Key    string

	// Body is the object content
	Body io.Reader

	// Size is the content length in bytes, -1 when unknown
	Size int64

	// PartSize is the requested part size, 0 for automatic planning
	PartSize int64

	// Concurrency overrides the uploader's worker count when positive
	Concurrency int

	ContentType  string
	Metadata     map[string]string
	StorageClass string

	// Progress receives transfer updates when non-nil
	Progress objtypes.ProgressTracker
}

// Result is the outcome of a finished upload.
type Result struct {
	ETag      string
	VersionID string
	Size      int64
	Parts     int
}

// Uploader runs uploads with bounded memory: at most concurrency part
// buffers exist at any moment, and sources that support positioned reads
// are never buffered at all.
type Uploader struct {
	api         API
	concurrency int
	logger      pslog.Logger
}

// New creates an Uploader. Concurrency values below one fall back to the
// default.
func New(api API, concurrency int, logger pslog.Logger) *Uploader {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &Uploader{api: api, concurrency: concurrency, logger: logger}
}

// Upload stores the input as one object. Content up to one part long goes
// through a plain PUT; anything larger runs as a multipart session that is
// aborted if it cannot complete.
func (u *Uploader) Upload(ctx context.Context, in *Input) (*Result, error) {
	meter := newProgressMeter(in.Progress, in.Size)

	var result *Result
	var err error
	if in.Size >= 0 {
		result, err = u.uploadKnown(ctx, in, meter)
	} else {
		result, err = u.uploadStream(ctx, in, meter)
	}
	if err != nil {
		meter.Error(err)
		return nil, err
	}
	meter.Complete()
	return result, nil
}

func (u *Uploader) uploadKnown(ctx context.Context, in *Input, meter *progressMeter) (*Result, error) {
	plan, err := planner.Plan(in.Size, in.PartSize)
	if err != nil {
		return nil, err
	}
	if len(plan) == 1 {
		return u.putSingle(ctx, in, in.Body, plan[0].Length, meter)
	}

	session := NewSession(in.Bucket, in.Key)
	if err := u.initiate(ctx, in, session); err != nil {
		return nil, err
	}

	partsCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if src, ok := in.Body.(io.ReaderAt); ok {
		u.uploadSections(partsCtx, cancel, in, session, src, plan, meter)
	} else {
		u.uploadSequential(partsCtx, cancel, in, session, plan, meter)
	}

	if session.Err() != nil {
		return nil, u.failAndAbort(ctx, in, session)
	}
	return u.finish(ctx, in, session, len(plan))
}

// uploadStream uploads a source of unknown length. Each round reads one
// part plus a single look-ahead byte; the look-ahead becoming the next
// part's first byte is what detects the final part without ever producing
// an empty one.
func (u *Uploader) uploadStream(ctx context.Context, in *Input, meter *progressMeter) (*Result, error) {
	partSize, err := planner.PartSize(in.Size, in.PartSize)
	if err != nil {
		return nil, err
	}

	bufs := pool.NewSized(int(partSize) + 1)

	first := bufs.Get()
	n, err := readChunk(in.Body, first, 0)
	if err != nil {
		bufs.Put(first)
		return nil, fmt.Errorf("read part 1: %w", err)
	}
	if int64(n) <= partSize {
		result, err := u.putSingle(ctx, in, bytes.NewReader(first[:n]), int64(n), meter)
		bufs.Put(first)
		return result, err
	}

	session := NewSession(in.Bucket, in.Key)
	if err := u.initiate(ctx, in, session); err != nil {
		bufs.Put(first)
		return nil, err
	}

	partsCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	sem := make(chan struct{}, u.concurrencyFor(in))
	var wg sync.WaitGroup

	dispatch := func(number int, buf []byte, length int64) bool {
		select {
		case sem <- struct{}{}:
		case <-partsCtx.Done():
			session.Fail(partsCtx.Err())
			bufs.Put(buf)
			return false
		}
		session.MarkInFlight(number)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			defer bufs.Put(buf)
			if err := u.sendPart(partsCtx, in, session, number, bytes.NewReader(buf[:length]), length, meter); err != nil {
				cancel()
			}
		}()
		return true
	}

	number := 1
	carry := first[partSize]
	if dispatch(number, first, partSize) {
		for {
			number++
			if number > planner.MaxPartCount {
				session.Fail(errors.NewInvalidSizeError(-1, fmt.Sprintf(
					"stream exceeds %d parts at %s per part",
					planner.MaxPartCount, humanize.IBytes(uint64(partSize)))))
				cancel()
				break
			}

			buf := bufs.Get()
			buf[0] = carry
			total, err := readChunk(in.Body, buf, 1)
			if err != nil {
				bufs.Put(buf)
				session.Fail(fmt.Errorf("read part %d: %w", number, err))
				cancel()
				break
			}
			if total == len(buf) {
				carry = buf[partSize]
				if !dispatch(number, buf, partSize) {
					break
				}
				continue
			}
			dispatch(number, buf, int64(total))
			break
		}
	}
	wg.Wait()

	if session.Err() != nil {
		return nil, u.failAndAbort(ctx, in, session)
	}
	return u.finish(ctx, in, session, number)
}

// putSingle stores content that fits in one request. No session exists
// and nothing needs aborting on failure.
func (u *Uploader) putSingle(ctx context.Context, in *Input, body io.Reader, size int64, meter *progressMeter) (*Result, error) {
	var seeker io.ReadSeeker
	switch {
	case size == 0:
		seeker = bytes.NewReader(nil)
	default:
		if src, ok := body.(io.ReaderAt); ok {
			seeker = io.NewSectionReader(src, 0, size)
		} else {
			buf := make([]byte, size)
			if _, err := io.ReadFull(body, buf); err != nil {
				return nil, fmt.Errorf("read body: %w", err)
			}
			seeker = bytes.NewReader(buf)
		}
	}

	out, err := u.api.PutObject(ctx, &rest.PutObjectInput{
		Bucket:       in.Bucket,
		Key:          in.Key,
		Body:         seeker,
		Size:         size,
		ContentType:  in.ContentType,
		Metadata:     in.Metadata,
		StorageClass: in.StorageClass,
	})
	if err != nil {
		return nil, errors.NewError("putObject", err).WithBucket(in.Bucket).WithKey(in.Key)
	}
	meter.Add(size)
	return &Result{ETag: out.ETag, VersionID: out.VersionID, Size: size, Parts: 1}, nil
}

func (u *Uploader) initiate(ctx context.Context, in *Input, session *Session) error {
	if err := session.BeginInitiate(); err != nil {
		return err
	}
	uploadID, err := u.api.CreateMultipartUpload(ctx, &rest.CreateMultipartInput{
		Bucket:       in.Bucket,
		Key:          in.Key,
		ContentType:  in.ContentType,
		Metadata:     in.Metadata,
		StorageClass: in.StorageClass,
	})
	if err != nil {
		return errors.NewError("initiateMultipartUpload", err).WithBucket(in.Bucket).WithKey(in.Key)
	}
	session.ConfirmInitiate(uploadID)
	u.logger.Debug("multipart.initiated",
		"bucket", in.Bucket, "key", in.Key, "upload_id", uploadID)
	return nil
}

// uploadSections sends parts from a positioned-read source. Workers read
// their own non-overlapping sections, so no part is ever buffered.
func (u *Uploader) uploadSections(ctx context.Context, cancel context.CancelFunc, in *Input, session *Session, src io.ReaderAt, plan []planner.Part, meter *progressMeter) {
	sem := make(chan struct{}, u.concurrencyFor(in))
	var wg sync.WaitGroup

dispatch:
	for _, part := range plan {
		if session.Err() != nil {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			session.Fail(ctx.Err())
			break dispatch
		}
		session.MarkInFlight(part.Number)
		wg.Add(1)
		go func(part planner.Part) {
			defer wg.Done()
			defer func() { <-sem }()
			body := io.NewSectionReader(src, part.Offset, part.Length)
			if err := u.sendPart(ctx, in, session, part.Number, body, part.Length, meter); err != nil {
				cancel()
			}
		}(part)
	}
	wg.Wait()
}

// uploadSequential sends parts from a plain reader. The single cursor is
// read on this goroutine; filled buffers are handed to workers, and the
// semaphore caps live buffers at the concurrency limit.
func (u *Uploader) uploadSequential(ctx context.Context, cancel context.CancelFunc, in *Input, session *Session, plan []planner.Part, meter *progressMeter) {
	bufs := pool.NewSized(int(plan[0].Length))
	sem := make(chan struct{}, u.concurrencyFor(in))
	var wg sync.WaitGroup

dispatch:
	for _, part := range plan {
		if session.Err() != nil {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			session.Fail(ctx.Err())
			break dispatch
		}

		buf := bufs.Get()[:part.Length]
		if _, err := io.ReadFull(in.Body, buf); err != nil {
			bufs.Put(buf)
			<-sem
			session.Fail(fmt.Errorf("read part %d: %w", part.Number, err))
			cancel()
			break
		}

		session.MarkInFlight(part.Number)
		wg.Add(1)
		go func(number int, buf []byte) {
			defer wg.Done()
			defer func() { <-sem }()
			defer bufs.Put(buf)
			if err := u.sendPart(ctx, in, session, number, bytes.NewReader(buf), int64(len(buf)), meter); err != nil {
				cancel()
			}
		}(part.Number, buf)
	}
	wg.Wait()
}

func (u *Uploader) sendPart(ctx context.Context, in *Input, session *Session, number int, body io.ReadSeeker, size int64, meter *progressMeter) error {
	etag, err := u.api.UploadPart(ctx, &rest.UploadPartInput{
		Bucket:     in.Bucket,
		Key:        in.Key,
		UploadID:   session.UploadID(),
		PartNumber: number,
		Body:       body,
		Size:       size,
	})
	if err != nil {
		err = errors.NewError("uploadPart", err).WithBucket(in.Bucket).WithKey(in.Key)
		session.MarkFailed(number, err)
		return err
	}
	session.Commit(number, etag, size)
	meter.Add(size)
	u.logger.Trace("multipart.part.committed",
		"bucket", in.Bucket, "key", in.Key, "part", number, "size", size)
	return nil
}

func (u *Uploader) finish(ctx context.Context, in *Input, session *Session, expected int) (*Result, error) {
	parts, err := session.BeginComplete(expected)
	if err != nil {
		session.Fail(err)
		return nil, u.failAndAbort(ctx, in, session)
	}

	result, err := u.api.CompleteMultipartUpload(ctx, in.Bucket, in.Key, session.UploadID(), parts)
	if err != nil {
		session.Fail(errors.NewError("completeMultipartUpload", err).WithBucket(in.Bucket).WithKey(in.Key))
		return nil, u.failAndAbort(ctx, in, session)
	}
	session.ConfirmComplete()
	u.logger.Debug("multipart.completed",
		"bucket", in.Bucket, "key", in.Key, "upload_id", session.UploadID(),
		"parts", len(parts), "size", session.BytesSent())

	return &Result{
		ETag:      result.ETag,
		VersionID: result.VersionID,
		Size:      session.BytesSent(),
		Parts:     len(parts),
	}, nil
}

// failAndAbort cleans up a failed session. The first recorded error is
// the reported cause; an abort failure rides along without replacing it.
func (u *Uploader) failAndAbort(ctx context.Context, in *Input, session *Session) error {
	cause := session.Err()
	uploadID, ok := session.BeginAbort()
	if !ok {
		return cause
	}

	abortCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), abortTimeout)
	defer cancel()
	abortErr := u.api.AbortMultipartUpload(abortCtx, in.Bucket, in.Key, uploadID)
	session.ConfirmAbort(abortErr)
	if abortErr != nil {
		u.logger.Warn("multipart.abort.failed",
			"bucket", in.Bucket, "key", in.Key, "upload_id", uploadID, "error", abortErr)
	} else {
		u.logger.Debug("multipart.aborted",
			"bucket", in.Bucket, "key", in.Key, "upload_id", uploadID)
	}

	return &errors.PartialUploadFailure{
		Bucket:   in.Bucket,
		Key:      in.Key,
		UploadID: uploadID,
		Err:      cause,
		AbortErr: abortErr,
	}
}

func (u *Uploader) concurrencyFor(in *Input) int {
	if in.Concurrency > 0 {
		return in.Concurrency
	}
	return u.concurrency
}

// readChunk fills buf from off onward until the buffer is full or the
// stream ends. It returns the total bytes in buf; end of stream is not an
// error.
func readChunk(r io.Reader, buf []byte, off int) (int, error) {
	n, err := io.ReadFull(r, buf[off:])
	total := off + n
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return total, nil
	}
	return total, err
}

// progressMeter serializes progress callbacks so reported totals only
// ever grow, even when parts finish out of order.
type progressMeter struct {
	mu      sync.Mutex
	tracker objtypes.ProgressTracker
	sent    int64
	total   int64
}

func newProgressMeter(tracker objtypes.ProgressTracker, total int64) *progressMeter {
	return &progressMeter{tracker: tracker, total: total}
}

// Add records n more transferred bytes and reports the new total.
func (m *progressMeter) Add(n int64) {
	if m.tracker == nil {
		return
	}
	m.mu.Lock()
	m.sent += n
	m.tracker.Update(m.sent, m.total)
	m.mu.Unlock()
}

// Complete signals a successful transfer.
func (m *progressMeter) Complete() {
	if m.tracker == nil {
		return
	}
	m.tracker.Complete()
}

// Error signals a failed transfer.
func (m *progressMeter) Error(err error) {
	if m.tracker == nil {
		return
	}
	m.tracker.Error(err)
}
