package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	leven "github.com/canisaugustinus/latin-leven"
	"github.com/canisaugustinus/latin-leven/alphabet"
	"github.com/canisaugustinus/latin-leven/codec"
	"github.com/canisaugustinus/latin-leven/cost"
)

func newTestIndex(t *testing.T, words []string, opts ...leven.Option) (*leven.Index, *alphabet.Alphabet) {
	t.Helper()
	alpha := alphabet.New(nil, words)
	idx, err := leven.New(alpha.EncodeAll(words), cost.Uniform(1), opts...)
	require.NoError(t, err)
	return idx, alpha
}

// serveJSON runs the server over the given request lines and returns the
// response lines after the ready signal.
func serveJSON(t *testing.T, s *Server, requests ...string) []string {
	t.Helper()
	var out bytes.Buffer
	WithIO(strings.NewReader(strings.Join(requests, "\n")), &out)(s)

	require.NoError(t, s.Serve(t.Context()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.NotEmpty(t, lines)
	assert.JSONEq(t, `{"status":"ready"}`, lines[0])
	return lines[1:]
}

func decode[T any](t *testing.T, line string) T {
	t.Helper()
	var v T
	require.NoError(t, codec.JSON{}.Unmarshal([]byte(line), &v))
	return v
}

func TestServer_Search(t *testing.T) {
	idx, alpha := newTestIndex(t, []string{"cat", "cab", "dog"})
	s := New(idx, alpha)

	lines := serveJSON(t, s,
		`{"id":"1","op":"search","q":"cat","k":2}`,
		`{"id":"2","op":"search","q":"cat","k":2,"par":true}`,
	)
	require.Len(t, lines, 2)

	for i, line := range lines {
		resp := decode[SearchResponse](t, line)
		assert.Equal(t, []string{"1", "2"}[i], resp.ID)
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, []Match{
			{Word: "cat", Score: 0, Index: 0},
			{Word: "cab", Score: 1, Index: 1},
		}, resp.Matches)
		assert.GreaterOrEqual(t, resp.TimeTaken, int64(0))
	}
	assert.Equal(t, int64(2), s.Requests())
}

func TestServer_Best(t *testing.T) {
	idx, alpha := newTestIndex(t, []string{"cat", "cab", "dog"})
	lines := serveJSON(t, New(idx, alpha),
		`{"id":"b","op":"best","q":"dig"}`,
		`{"id":"p","op":"best","q":"  dōg ","par":true}`,
	)
	require.Len(t, lines, 2)

	first := decode[SearchResponse](t, lines[0])
	require.Len(t, first.Matches, 1)
	assert.Equal(t, Match{Word: "dog", Score: 1, Index: 2}, first.Matches[0])

	second := decode[SearchResponse](t, lines[1])
	require.Len(t, second.Matches, 1)
	assert.Equal(t, Match{Word: "dog", Score: 0, Index: 2}, second.Matches[0])
}

func TestServer_Symbols(t *testing.T) {
	idx, alpha := newTestIndex(t, []string{"ab", "ba"})
	a, _ := alpha.Code('a')
	b, _ := alpha.Code('b')
	require.Equal(t, uint32(1), uint32(a))
	require.Equal(t, uint32(2), uint32(b))

	lines := serveJSON(t, New(idx, alpha), `{"id":"s","op":"search","sym":[2,1],"k":1}`)
	resp := decode[SearchResponse](t, lines[0])
	assert.Equal(t, []Match{{Word: "ba", Score: 0, Index: 1}}, resp.Matches)
}

func TestServer_KLimits(t *testing.T) {
	words := []string{"a", "b", "c", "d", "e"}
	idx, alpha := newTestIndex(t, words)
	s := New(idx, alpha, WithConfig(Config{DefaultK: 3, MaxK: 4}))

	lines := serveJSON(t, s,
		`{"id":"default","op":"search","q":"a"}`,
		`{"id":"capped","op":"search","q":"a","k":50}`,
	)
	assert.Equal(t, 3, decode[SearchResponse](t, lines[0]).Count)
	assert.Equal(t, 4, decode[SearchResponse](t, lines[1]).Count)
}

func TestServer_Distance(t *testing.T) {
	idx, alpha := newTestIndex(t, []string{"ab", "abc"})
	lines := serveJSON(t, New(idx, alpha), `{"id":"d","op":"distance","q":"ab","c":"abc"}`)

	resp := decode[DistanceResponse](t, lines[0])
	assert.Equal(t, "d", resp.ID)
	assert.InDelta(t, 1, resp.Distance, 1e-12)
}

func TestServer_HealthAndInfo(t *testing.T) {
	idx, alpha := newTestIndex(t, []string{"cat", "dog"})
	lines := serveJSON(t, New(idx, alpha),
		`{"op":"health"}`,
		`{"id":"i","op":"info"}`,
	)
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"status":"ok"}`, lines[0])

	info := decode[InfoResponse](t, lines[1])
	assert.Equal(t, 2, info.Entries)
	assert.Equal(t, alpha.Len(), info.Alphabet)
	assert.Equal(t, "json", info.Codec)
	assert.False(t, info.KeyCost)
}

func TestServer_Errors(t *testing.T) {
	idx, alpha := newTestIndex(t, []string{"cat"})
	s := New(idx, alpha, WithConfig(Config{MaxQueryLen: 4}))

	lines := serveJSON(t, s,
		`{"id":"1","op":"fly"}`,
		`{"id":"2"}`,
		`{"id":"3","op":"suggest"}`,
		`{"id":"4","op":"search","q":"catapult"}`,
		`not json`,
		``,
		`{"id":"5","op":"distance"}`,
		`{"id":"6","op":"health"}`,
	)
	require.Len(t, lines, 7)

	for i, id := range []string{"1", "2", "3", "4", "", "5"} {
		resp := decode[ErrorResponse](t, lines[i])
		assert.Equal(t, id, resp.ID)
		assert.Equal(t, CodeBadRequest, resp.Code, "line %d", i)
		assert.NotEmpty(t, resp.Error)
	}
	assert.JSONEq(t, `{"id":"6","status":"ok"}`, lines[6])
}

func TestServer_EmptyIndex(t *testing.T) {
	idx, alpha := newTestIndex(t, nil)
	lines := serveJSON(t, New(idx, alpha),
		`{"id":"s","op":"search","q":"cat"}`,
		`{"id":"b","op":"best","q":"cat"}`,
	)
	require.Len(t, lines, 2)

	assert.Contains(t, lines[0], `"r":[]`)
	assert.Zero(t, decode[SearchResponse](t, lines[0]).Count)
	assert.Equal(t, ErrorResponse{ID: "b", Error: "no match", Code: CodeNotFound}, decode[ErrorResponse](t, lines[1]))
}

func TestServer_Exhausted(t *testing.T) {
	idx, alpha := newTestIndex(t, []string{"cat"}, leven.WithSearchRateLimit(1, 1), leven.WithFailFast())
	lines := serveJSON(t, New(idx, alpha),
		`{"id":"1","op":"search","q":"cat"}`,
		`{"id":"2","op":"search","q":"cat"}`,
	)
	require.Len(t, lines, 2)
	assert.Equal(t, 1, decode[SearchResponse](t, lines[0]).Count)
	assert.Equal(t, CodeExhausted, decode[ErrorResponse](t, lines[1]).Code)
}

func TestServer_Closed(t *testing.T) {
	idx, alpha := newTestIndex(t, []string{"cat"})
	require.NoError(t, idx.Close())

	lines := serveJSON(t, New(idx, alpha), `{"id":"1","op":"search","q":"cat"}`)
	assert.Equal(t, CodeInternal, decode[ErrorResponse](t, lines[0]).Code)
}

func TestServer_MsgPack(t *testing.T) {
	idx, alpha := newTestIndex(t, []string{"cat", "cab", "dog"})
	mp := codec.MsgPack{}

	var in bytes.Buffer
	enc := mp.NewEncoder(&in)
	require.NoError(t, enc.Encode(Request{ID: "m", Op: OpSearch, Query: "cab", K: 1}))
	require.NoError(t, enc.Encode(Request{ID: "h", Op: OpHealth}))

	var out bytes.Buffer
	s := New(idx, alpha, WithCodec(mp), WithIO(&in, &out))
	require.NoError(t, s.Serve(t.Context()))

	dec := mp.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready.Status)

	var resp SearchResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "m", resp.ID)
	assert.Equal(t, []Match{{Word: "cab", Score: 0, Index: 1}}, resp.Matches)

	var health StatusResponse
	require.NoError(t, dec.Decode(&health))
	assert.Equal(t, StatusResponse{ID: "h", Status: "ok"}, health)

	assert.ErrorIs(t, dec.Decode(&health), io.EOF)
}

func TestServer_MsgPackCorruptStream(t *testing.T) {
	idx, alpha := newTestIndex(t, []string{"cat"})
	var out bytes.Buffer
	s := New(idx, alpha, WithCodec(codec.MsgPack{}), WithIO(bytes.NewReader([]byte{0xc1}), &out))

	err := s.Serve(t.Context())
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
}

func TestServer_Cancel(t *testing.T) {
	idx, alpha := newTestIndex(t, []string{"cat"})
	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	s := New(idx, alpha, WithIO(pr, &out))

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestServer_RandomQuery(t *testing.T) {
	idx, alpha := newTestIndex(t, []string{"amicus"})
	lines := serveJSON(t, New(idx, alpha),
		`{"id":"s","op":"search"}`,
		`{"id":"b","op":"best","q":"   "}`,
	)
	require.Len(t, lines, 2)

	for _, line := range lines {
		resp := decode[SearchResponse](t, line)
		assert.Equal(t, "amicus", resp.Query)
		assert.Equal(t, []Match{{Word: "amicus", Score: 0, Index: 0}}, resp.Matches)
	}

	empty, emptyAlpha := newTestIndex(t, nil)
	lines = serveJSON(t, New(empty, emptyAlpha), `{"id":"e","op":"search"}`)
	assert.Equal(t, ErrorResponse{ID: "e", Error: "no match", Code: CodeNotFound}, decode[ErrorResponse](t, lines[0]))
}

func TestServer_Suggest(t *testing.T) {
	words := []string{"amo", "amicus", "amb"}
	alpha := alphabet.New(nil, words)
	keys := alpha.EncodeAll(words)

	primary, err := leven.New(keys, cost.Uniform(1))
	require.NoError(t, err)
	cheap := cost.Uniform(1)
	cheap.Append = 0.1
	suggest, err := leven.New(keys, cheap)
	require.NoError(t, err)

	lines := serveJSON(t, New(primary, alpha, WithSuggestIndex(suggest), WithConfig(Config{SuggestK: 2})),
		`{"id":"s","op":"search","q":"ami","k":1}`,
		`{"id":"g","op":"suggest","q":"ami"}`,
		`{"id":"i","op":"info"}`,
	)
	require.Len(t, lines, 3)

	// under uniform costs "amo" and "amb" are one edit away
	plain := decode[SearchResponse](t, lines[0])
	require.Len(t, plain.Matches, 1)
	assert.Equal(t, "amo", plain.Matches[0].Word)

	// cheap appends rank the completion first
	sugg := decode[SearchResponse](t, lines[1])
	require.Len(t, sugg.Matches, 2)
	assert.Equal(t, "amicus", sugg.Matches[0].Word)
	assert.InDelta(t, 0.3, sugg.Matches[0].Score, 1e-9)

	assert.True(t, decode[InfoResponse](t, lines[2]).Suggest)
}

func TestServer_SuggestDefaultsToMainIndex(t *testing.T) {
	idx, alpha := newTestIndex(t, []string{"cat", "cab"})
	lines := serveJSON(t, New(idx, alpha),
		`{"id":"g","op":"suggest","q":"cat"}`,
		`{"id":"i","op":"info"}`,
	)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, decode[SearchResponse](t, lines[0]).Count)
	assert.False(t, decode[InfoResponse](t, lines[1]).Suggest)
}

func TestServer_ExplicitSequential(t *testing.T) {
	metrics := &leven.BasicMetricsCollector{}
	idx, alpha := newTestIndex(t, []string{"cat", "cab", "dog"}, leven.WithMetricsCollector(metrics))
	s := New(idx, alpha, WithConfig(Config{Parallel: true}))

	lines := serveJSON(t, s,
		`{"id":"1","op":"search","q":"cat","par":false}`,
		`{"id":"2","op":"best","q":"cat","par":false}`,
		`{"id":"3","op":"search","q":"cat"}`,
	)
	require.Len(t, lines, 3)

	stats := metrics.GetStats()
	assert.Equal(t, int64(3), stats.SearchCount)
	assert.Equal(t, int64(1), stats.ParallelSearchCount)
}

// failingWriter accepts the first write and fails every later one.
type failingWriter struct {
	writes int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes > 1 {
		return 0, errors.New("broken pipe")
	}
	return len(p), nil
}

func TestServer_WriteErrorStopsReader(t *testing.T) {
	idx, alpha := newTestIndex(t, []string{"cat"})
	before := runtime.NumGoroutine()

	in := strings.NewReader(strings.Repeat(`{"op":"health"}`+"\n", 3))
	s := New(idx, alpha, WithIO(in, &failingWriter{}))

	err := s.Serve(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")

	deadline := time.Now().Add(5 * time.Second)
	for runtime.NumGoroutine() > before && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), before, "request reader still running after Serve returned")
}

func TestServer_RequestsConcurrent(t *testing.T) {
	idx, alpha := newTestIndex(t, []string{"cat"})
	s := New(idx, alpha)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				assert.GreaterOrEqual(t, s.Requests(), int64(0))
			}
		}
	}()

	lines := serveJSON(t, s, strings.Split(strings.Repeat(`{"op":"health"}`+"\n", 50), "\n")...)
	close(stop)
	wg.Wait()

	assert.Len(t, lines, 50)
	assert.Equal(t, int64(50), s.Requests())
}
