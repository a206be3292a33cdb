package clickhouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	cases := []struct {
		name string
		cfg  ClientConfig
		want string
	}{
		{
			name: "native no params",
			cfg:  ClientConfig{Host: "ch", Port: 9000, Database: "signalscan", User: "default"},
			want: "clickhouse://default:@ch:9000/signalscan",
		},
		{
			name: "timeouts and async insert",
			cfg: ClientConfig{
				Host: "ch", Port: 9000, Database: "db", User: "u", Password: "p",
				DialTimeout: 5 * time.Second, ReadTimeout: 30 * time.Second,
				MaxExecTime: time.Minute, AsyncInsert: true, WaitForAsync: true,
			},
			want: "clickhouse://u:p@ch:9000/db?dial_timeout=5s&read_timeout=30s&max_execution_time=60&async_insert=1&wait_for_async_insert=1",
		},
		{
			name: "http",
			cfg:  ClientConfig{Host: "ch", Port: 8123, Database: "db", User: "u", UseHTTP: true},
			want: "http://u:@ch:8123/db",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, buildDSN(tc.cfg))
		})
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient()
	assert.Error(t, err)
}

func TestQualify(t *testing.T) {
	c := NewClientFromDB(nil, "signalscan")
	assert.Equal(t, "signalscan.bars", c.Qualify("bars"))
	assert.Equal(t, "other.bars", c.Qualify("other.bars"))
	assert.Equal(t, "bars", NewClientFromDB(nil, "").Qualify("bars"))
}

func TestAsyncInsertOption(t *testing.T) {
	cfg := ClientConfig{Host: "ch", Port: 9000, Database: "signalscan", User: "default"}
	WithAsyncInsert(true, false)(&cfg)
	assert.Equal(t, "clickhouse://default:@ch:9000/signalscan?async_insert=1", buildDSN(cfg))

	WithAsyncInsert(true, true)(&cfg)
	assert.Equal(t, "clickhouse://default:@ch:9000/signalscan?async_insert=1&wait_for_async_insert=1", buildDSN(cfg))
}
