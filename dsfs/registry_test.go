package dsfs

import (
	"io"
	"sync"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFileSystem struct {
	FileSystem
	id int
}

func registerCountingFactory(t *testing.T, protocol string) *int32 {
	t.Helper()
	var lock sync.Mutex
	var builds int32
	RegisterProtocol(protocol, func(map[string]ldvalue.Value, ldlog.Loggers) (FileSystem, error) {
		lock.Lock()
		defer lock.Unlock()
		builds++
		return &stubFileSystem{id: int(builds)}, nil
	})
	return &builds
}

func TestForProtocolUnknownProtocol(t *testing.T) {
	_, err := ForProtocol("no-such-scheme", nil, ldlog.NewDisabledLoggers())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-scheme")
}

func TestForProtocolSharesInstances(t *testing.T) {
	builds := registerCountingFactory(t, "regtest-share")

	fs1, err := ForProtocol("regtest-share", nil, ldlog.NewDisabledLoggers())
	require.NoError(t, err)
	fs2, err := ForProtocol("regtest-share", nil, ldlog.NewDisabledLoggers())
	require.NoError(t, err)

	assert.Same(t, fs1, fs2)
	assert.Equal(t, int32(1), *builds)
}

func TestForProtocolIsCaseInsensitive(t *testing.T) {
	builds := registerCountingFactory(t, "RegTest-Case")

	fs1, err := ForProtocol("regtest-case", nil, ldlog.NewDisabledLoggers())
	require.NoError(t, err)
	fs2, err := ForProtocol("REGTEST-CASE", nil, ldlog.NewDisabledLoggers())
	require.NoError(t, err)

	assert.Same(t, fs1, fs2)
	assert.Equal(t, int32(1), *builds)
}

func TestForProtocolKeysInstancesByOptions(t *testing.T) {
	builds := registerCountingFactory(t, "regtest-opts")

	optsA := map[string]ldvalue.Value{"region": ldvalue.String("eu-west-1"), "anon": ldvalue.Bool(true)}
	optsB := map[string]ldvalue.Value{"region": ldvalue.String("us-east-1"), "anon": ldvalue.Bool(true)}
	// Same options, different map iteration order should not matter.
	optsA2 := map[string]ldvalue.Value{"anon": ldvalue.Bool(true), "region": ldvalue.String("eu-west-1")}

	fsA, err := ForProtocol("regtest-opts", optsA, ldlog.NewDisabledLoggers())
	require.NoError(t, err)
	fsB, err := ForProtocol("regtest-opts", optsB, ldlog.NewDisabledLoggers())
	require.NoError(t, err)
	fsA2, err := ForProtocol("regtest-opts", optsA2, ldlog.NewDisabledLoggers())
	require.NoError(t, err)

	assert.Same(t, fsA, fsA2)
	assert.NotSame(t, fsA, fsB)
	assert.Equal(t, int32(2), *builds)
}

func TestForProtocolDoesNotCacheFailures(t *testing.T) {
	var attempts int
	RegisterProtocol("regtest-fail", func(map[string]ldvalue.Value, ldlog.Loggers) (FileSystem, error) {
		attempts++
		if attempts == 1 {
			return nil, io.ErrUnexpectedEOF
		}
		return &stubFileSystem{}, nil
	})

	_, err := ForProtocol("regtest-fail", nil, ldlog.NewDisabledLoggers())
	require.Error(t, err)

	fs, err := ForProtocol("regtest-fail", nil, ldlog.NewDisabledLoggers())
	require.NoError(t, err)
	assert.NotNil(t, fs)
	assert.Equal(t, 2, attempts)
}

func TestForProtocolConcurrentCallersShareConstruction(t *testing.T) {
	builds := registerCountingFactory(t, "regtest-race")

	const callers = 20
	results := make([]FileSystem, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fs, err := ForProtocol("regtest-race", nil, ldlog.NewDisabledLoggers())
			assert.NoError(t, err)
			results[i] = fs
		}(i)
	}
	wg.Wait()

	for _, fs := range results[1:] {
		assert.Same(t, results[0], fs)
	}
	assert.Equal(t, int32(1), *builds)
}
