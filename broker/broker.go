// Package broker publishes the current tariff situation to an MQTT broker
// so home automation (wallboxes, heat pumps) can react to cheap windows.
package broker

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/haukew/stromtarif-go/analyze"
	"github.com/haukew/stromtarif-go/config"
	"github.com/haukew/stromtarif-go/convert"
	"github.com/haukew/stromtarif-go/types"
)

type Publisher struct {
	mqttClient mqtt.Client
	logger     *slog.Logger
	prefix     string
}

type currentPayload struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	PriceCtKWh float64   `json:"price_ct_kwh"`
	VsDayAvg   float64   `json:"vs_day_avg"`
}

type dayAveragePayload struct {
	PriceCtKWh float64 `json:"price_ct_kwh"`
	Samples    int     `json:"samples"`
}

type windowPayload struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	AvgPriceCtKWh float64   `json:"avg_price_ct_kwh"`
	Active        bool      `json:"active"`
}

func New(cnfg config.AppConfigMqtt) *Publisher {
	logger := slog.Default().With("module", "broker")
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cnfg.Host, cnfg.Port))
	opts.SetClientID("stromtarif")
	opts.SetUsername(cnfg.Username)
	opts.SetPassword(cnfg.Password)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("MQTT connected")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	}

	mqttLog := slog.Default().With("module", "mqtt")
	mqtt.CRITICAL = newMqttLogger(mqttLog, slog.LevelError)
	mqtt.ERROR = newMqttLogger(mqttLog, slog.LevelError)
	mqtt.WARN = newMqttLogger(mqttLog, slog.LevelWarn)

	return &Publisher{
		mqttClient: mqtt.NewClient(opts),
		logger:     logger,
		prefix:     cnfg.GetTopicPrefix(),
	}
}

func (p *Publisher) Connect() error {
	p.logger.Debug("connecting MQTT client")
	if token := p.mqttClient.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (p *Publisher) Disconnect() {
	p.mqttClient.Disconnect(250)
}

// PublishAnalysis derives the summaries from the series and publishes them
// retained, so late subscribers get the latest state immediately.
func (p *Publisher) PublishAnalysis(series types.PriceSeries, windowHours int, now time.Time) {
	dayAvg, err := analyze.DayAverage(series)
	if err != nil {
		p.logger.Warn("nothing to publish", slog.Any("error", err))
		return
	}

	p.publish("price/day_average", dayAveragePayload{
		PriceCtKWh: convert.RoundFloat64(dayAvg, 4),
		Samples:    len(series),
	})

	if current := analyze.CurrentSample(series, now); current.IsValid() {
		s := current.Value()
		p.publish("price/current", currentPayload{
			Start:      s.Start,
			End:        s.End,
			PriceCtKWh: s.PriceCtKWh,
			VsDayAvg:   convert.RoundFloat64(s.PriceCtKWh-dayAvg, 4),
		})
	}

	windows := analyze.CheapestNonOverlappingWindows(series, windowHours)
	for _, w := range windows {
		// The next cheap window is the first one that has not ended yet
		if w.End.After(now) {
			p.publish("price/cheapest_window", windowPayload{
				Start:         w.Start,
				End:           w.End,
				AvgPriceCtKWh: w.AvgPriceCtKWh,
				Active:        !w.Start.After(now),
			})
			break
		}
	}
}

func (p *Publisher) publish(topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("marshaling MQTT payload", slog.String("topic", topic), slog.Any("error", err))
		return
	}

	fullTopic := fmt.Sprintf("%s/%s", p.prefix, topic)
	token := p.mqttClient.Publish(fullTopic, 0, true, data)
	go func() {
		if token.Wait() && token.Error() != nil {
			p.logger.Warn("MQTT publish failed", slog.String("topic", fullTopic), slog.Any("error", token.Error()))
		}
	}()
}
