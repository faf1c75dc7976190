package ratelimit

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

// TestNewLimiter tests the Limiter constructor
func TestNewLimiter(t *testing.T) {
	t.Run("ValidBytesPerSecond", func(t *testing.T) {
		limiter := NewLimiter(1024 * 1024) // 1 MB/s
		if limiter == nil {
			t.Fatal("NewLimiter() returned nil for valid input")
		}
		if got := limiter.BytesPerSecond(); got != 1024*1024 {
			t.Errorf("BytesPerSecond() = %d, want %d", got, 1024*1024)
		}
		if got := limiter.Burst(); got != 1024*1024 {
			t.Errorf("Burst() = %d, want one second of data", got)
		}
	})

	t.Run("ZeroBytesPerSecond", func(t *testing.T) {
		if limiter := NewLimiter(0); limiter != nil {
			t.Error("NewLimiter(0) should return nil (no limiting)")
		}
	})

	t.Run("NegativeBytesPerSecond", func(t *testing.T) {
		if limiter := NewLimiter(-100); limiter != nil {
			t.Error("NewLimiter(-100) should return nil (no limiting)")
		}
	})

	t.Run("SmallBytesPerSecond", func(t *testing.T) {
		if got := NewLimiter(1000).Burst(); got != minBurst {
			t.Errorf("Burst() = %d, want %d", got, minBurst)
		}
	})
}

func TestLimiterWait(t *testing.T) {
	t.Run("WithinBurst", func(t *testing.T) {
		limiter := NewLimiter(1000)

		start := time.Now()
		if err := limiter.Wait(context.Background(), minBurst); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			t.Errorf("Wait() within burst took %v", elapsed)
		}
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		limiter := NewLimiter(1000)
		if err := limiter.Wait(context.Background(), minBurst); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := limiter.Wait(ctx, 512); !errors.Is(err, context.Canceled) {
			t.Errorf("Wait() error = %v, want context.Canceled", err)
		}
	})
}

func TestReadCloser(t *testing.T) {
	t.Run("NilLimiterPassesThrough", func(t *testing.T) {
		rc := io.NopCloser(bytes.NewReader([]byte("hello")))
		if got := NewReadCloser(context.Background(), rc, nil); got != rc {
			t.Error("NewReadCloser() with nil limiter should return the reader unchanged")
		}
	})

	t.Run("PreservesContent", func(t *testing.T) {
		data := bytes.Repeat([]byte("0123456789"), 10000)
		limiter := NewLimiter(10 * 1024 * 1024)

		rc := NewReadCloser(context.Background(), io.NopCloser(bytes.NewReader(data)), limiter)
		got, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("read %d bytes, want %d identical bytes", len(got), len(data))
		}
		if err := rc.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	t.Run("ReadCappedToBurst", func(t *testing.T) {
		limiter := NewLimiter(1000)
		rc := NewReadCloser(context.Background(), io.NopCloser(bytes.NewReader(make([]byte, 2*minBurst))), limiter)

		n, err := rc.Read(make([]byte, 2*minBurst))
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if n != minBurst {
			t.Errorf("Read() = %d bytes, want %d", n, minBurst)
		}
	})

	t.Run("Throttles", func(t *testing.T) {
		const bytesPerSecond = 4 * minBurst
		data := make([]byte, bytesPerSecond+bytesPerSecond/2)
		limiter := NewLimiter(bytesPerSecond)

		// The first second of data is the burst, the rest takes ~500ms
		start := time.Now()
		rc := NewReadCloser(context.Background(), io.NopCloser(bytes.NewReader(data)), limiter)
		n, err := io.Copy(io.Discard, rc)
		if err != nil {
			t.Fatalf("Copy() error = %v", err)
		}
		if n != int64(len(data)) {
			t.Errorf("copied %d bytes, want %d", n, len(data))
		}
		if elapsed := time.Since(start); elapsed < 300*time.Millisecond {
			t.Errorf("throttled read took %v, want at least 300ms", elapsed)
		}
	})

	t.Run("CancelledRead", func(t *testing.T) {
		limiter := NewLimiter(1000)
		if err := limiter.Wait(context.Background(), minBurst); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rc := NewReadCloser(ctx, io.NopCloser(bytes.NewReader(make([]byte, 4096))), limiter)
		if _, err := rc.Read(make([]byte, 4096)); !errors.Is(err, context.Canceled) {
			t.Errorf("Read() error = %v, want context.Canceled", err)
		}
	})
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"Empty", "", 0, false},
		{"Zero", "0", 0, false},
		{"Bytes", "1000", 1000, false},
		{"Kilo", "512K", 512 * 1024, false},
		{"Mega", "10M", 10 * 1024 * 1024, false},
		{"MegaLowercase", "10mb", 10 * 1024 * 1024, false},
		{"Fractional", "1.5M", 1536 * 1024, false},
		{"Giga", "1G", 1024 * 1024 * 1024, false},
		{"PerSecond", "2MB/s", 2 * 1024 * 1024, false},
		{"NotANumber", "fast", 0, true},
		{"Negative", "-1M", 0, true},
		{"NaN", "NaN", 0, true},
		{"Inf", "Inf", 0, true},
		{"NegativeInf", "-Inf", 0, true},
		{"Overflow", "1e30", 0, true},
		{"OverflowWithUnit", "9e18K", 0, true},
		{"MaxInt64", "9223372036854775807", 0, true},
		{"LargeButValid", "8e18", 8e18, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRate(%q) = %d, want %d", tt.input, got, tt.want)
			}
			if got < 0 {
				t.Errorf("ParseRate(%q) = %d, want a non-negative rate", tt.input, got)
			}
		})
	}
}
