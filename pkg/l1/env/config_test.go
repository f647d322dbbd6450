package env

import (
	"flag"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{Port: "/dev/ttyS0", BaudRate: 9600, Threshold: 27}
}

func TestApplyEnv(t *testing.T) {
	vars := map[string]string{
		"HOMECTL_PORT":        "/dev/ttyUSB0",
		"HOMECTL_BAUD":        "115200",
		"HOMECTL_MQTT_URL":    "mqtt://broker:1883/home/",
		"HOMECTL_ID":          "kitchen",
		"HOMECTL_FEED_SECRET": "s3cret",
	}
	c := testConfig()
	applyEnv(c, func(k string) string { return vars[k] })
	require.Equal(t, "/dev/ttyUSB0", c.Port)
	require.Equal(t, 115200, c.BaudRate)
	require.Equal(t, "mqtt://broker:1883/home/", c.MQTTBrokerURL)
	require.Equal(t, "kitchen", c.Info.Ref.ID)
	require.Equal(t, "s3cret", c.FeedSecret)

	c = testConfig()
	applyEnv(c, func(k string) string {
		if k == "HOMECTL_BAUD" {
			return "fast"
		}
		return ""
	})
	require.Equal(t, 9600, c.BaudRate)
}

func writeFile(t *testing.T, content string) string {
	dir, err := ioutil.TempDir("", "homectl")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	fn := filepath.Join(dir, "homectl.yaml")
	require.NoError(t, ioutil.WriteFile(fn, []byte(content), 0644))
	return fn
}

func TestLoadFilePrecedence(t *testing.T) {
	fn := writeFile(t, `
port: /dev/ttyACM0
baud: 19200
mqtt: mqtt://broker/
id: garage
threshold: 30.5
listen: ":8080"
report_log: /var/log/homectl/reports.log
`)
	c := testConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	setupFlags(fs, c)
	require.NoError(t, fs.Parse([]string{"-baud", "4800", "-threshold", "26"}))

	require.NoError(t, c.LoadFile(fn, ExplicitFlags(fs)))
	require.Equal(t, "/dev/ttyACM0", c.Port)
	require.Equal(t, 4800, c.BaudRate)
	require.Equal(t, "mqtt://broker/", c.MQTTBrokerURL)
	require.Equal(t, "garage", c.Info.Ref.ID)
	require.Equal(t, 26.0, c.Threshold)
	require.Equal(t, ":8080", c.Listen)
	require.Equal(t, "/var/log/homectl/reports.log", c.ReportLog)
}

func TestLoadFileZeroThreshold(t *testing.T) {
	fn := writeFile(t, "threshold: 0\n")
	c := testConfig()
	require.NoError(t, c.LoadFile(fn, nil))
	require.Equal(t, 0.0, c.Threshold)
	require.Equal(t, "/dev/ttyS0", c.Port)
}

func TestLoadFileErrors(t *testing.T) {
	c := testConfig()
	require.Error(t, c.LoadFile(writeFile(t, "unknown: 1\n"), nil))
	require.Error(t, c.LoadFile(filepath.Join(os.TempDir(), "homectl-missing.yaml"), nil))
}

func TestValidate(t *testing.T) {
	c := testConfig()
	require.NoError(t, c.Validate())
	c.MQTTBrokerURL = "mqtt://broker/"
	require.Error(t, c.Validate())
	c.Info.Ref.Type, c.Info.Ref.ID = DeviceType, "kitchen"
	require.NoError(t, c.Validate())
	c.Port = ""
	require.Error(t, c.Validate())
}

func TestOptionalComponents(t *testing.T) {
	c := testConfig()
	b, err := c.NewBridge(nil)
	require.NoError(t, err)
	require.Nil(t, b)
	require.Nil(t, c.NewFeed(nil))
	require.Nil(t, c.NewReportLog())

	c.Listen = ":0"
	feed := c.NewFeed(nil)
	require.NotNil(t, feed)
	require.Nil(t, feed.Auth)
	c.FeedSecret = "s3cret"
	require.NotNil(t, c.NewFeed(nil).Auth)
}

func TestMachineID(t *testing.T) {
	require.NotEmpty(t, MachineID())
}
