package metrics

import (
	"strings"
	"time"

	"github.com/google/hoststat/internal/history"
	"github.com/labstack/gommon/log"
)

// DefaultInterfacePrefixes are the physical and loopback interface name
// prefixes whose counters are summed.
var DefaultInterfacePrefixes = []string{"en", "eth", "wl", "lo"}

// NetworkSampler converts cumulative interface byte counters into throughput.
type NetworkSampler struct {
	src      NetworkSource
	prefixes []string
	now      func() time.Time

	previousDownload uint64
	previousUpload   uint64
	lastUpdate       time.Time

	state           NetworkState
	downloadHistory *history.Buffer
	uploadHistory   *history.Buffer
}

// NewNetworkSampler returns a sampler summing interfaces whose names start
// with one of prefixes. An empty prefix list selects DefaultInterfacePrefixes.
func NewNetworkSampler(src NetworkSource, prefixes []string) *NetworkSampler {
	if len(prefixes) == 0 {
		prefixes = DefaultInterfacePrefixes
	}
	return &NetworkSampler{
		src:             src,
		prefixes:        append([]string(nil), prefixes...),
		now:             time.Now,
		lastUpdate:      time.Now(),
		downloadHistory: history.New(history.DefaultLength),
		uploadHistory:   history.New(history.DefaultLength),
	}
}

// Update sums the allowed interfaces and derives bytes/second since the
// previous call. Both history buffers advance on every successful read,
// with 0 appended on the baseline cycle.
func (s *NetworkSampler) Update() NetworkState {
	counters, err := s.src.Counters()
	if err != nil {
		log.Debugf("network: counter read failed: %v", err)
		return s.State()
	}

	var currentDownload, currentUpload uint64
	for _, c := range counters {
		if s.allowed(c.Name) {
			currentDownload += c.BytesRecv
			currentUpload += c.BytesSent
		}
	}

	now := s.now()
	interval := now.Sub(s.lastUpdate).Seconds()

	if s.previousDownload == 0 || interval <= 0 {
		s.state.DownloadSpeed = 0
		s.state.UploadSpeed = 0
	} else {
		s.state.DownloadSpeed = rate(s.previousDownload, currentDownload, interval)
		s.state.UploadSpeed = rate(s.previousUpload, currentUpload, interval)
	}

	s.state.TotalDownloadBytes = currentDownload
	s.state.TotalUploadBytes = currentUpload
	s.previousDownload = currentDownload
	s.previousUpload = currentUpload
	s.lastUpdate = now

	s.downloadHistory.Push(s.state.DownloadSpeed)
	s.uploadHistory.Push(s.state.UploadSpeed)

	return s.State()
}

// State returns a copy of the current state.
func (s *NetworkSampler) State() NetworkState {
	st := s.state
	st.DownloadHistory = s.downloadHistory.Values()
	st.UploadHistory = s.uploadHistory.Values()
	return st
}

func (s *NetworkSampler) allowed(name string) bool {
	for _, p := range s.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// rate returns the per-second delta, or 0 when the counter went backwards.
func rate(prev, cur uint64, seconds float64) float64 {
	if cur < prev {
		log.Debugf("network: counter reset (%d -> %d), re-baselining", prev, cur)
		return 0
	}
	return float64(cur-prev) / seconds
}
