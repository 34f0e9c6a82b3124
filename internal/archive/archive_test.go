package archive

import (
	"errors"
	"testing"
	"time"

	"optflow/internal/model"
)

func sampleBars() []model.Bar {
	return []model.Bar{
		{Symbol: "AAPL", Timestamp: 1704171600000, Open: 187.15, High: 188.44, Low: 183.89, Close: 185.64, Volume: 82488700},
		{Symbol: "AAPL", Timestamp: 1704258000000, Open: 184.22, High: 185.88, Low: 183.43, Close: 184.25, Volume: 58100000},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := Store{Root: t.TempDir()}
	k := Key{Source: "massive", Symbol: "AAPL", Label: "2024-01-02_to_2024-01-03"}

	if err := Write(s, k, sampleBars()); err != nil {
		t.Fatal(err)
	}
	got, err := Read[model.Bar](s, k)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d rows, want 2", len(got))
	}
	if got[0] != sampleBars()[0] {
		t.Errorf("row round trip mismatch: got %+v want %+v", got[0], sampleBars()[0])
	}
}

func TestWriteOverwrites(t *testing.T) {
	s := Store{Root: t.TempDir()}
	k := Key{Source: "massive", Symbol: "AAPL", Label: "2024-01-02"}

	if err := Write(s, k, sampleBars()); err != nil {
		t.Fatal(err)
	}
	if err := Write(s, k, sampleBars()[:1]); err != nil {
		t.Fatal(err)
	}
	got, err := Read[model.Bar](s, k)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("after overwrite read %d rows, want 1", len(got))
	}
}

func TestReadMissingPartition(t *testing.T) {
	s := Store{Root: t.TempDir()}
	_, err := Read[model.Bar](s, Key{Source: "massive", Symbol: "NOPE", Label: "2024-01-02"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestOptionRowRoundTrip(t *testing.T) {
	iv := 0.42
	rows := []model.OptionRow{{
		IngestedAt:       "2024-01-02T21:00:05Z",
		Ticker:           "XYZ240119C00095000",
		ExpirationDate:   "2024-01-19",
		StrikePrice:      95,
		ContractType:     "call",
		ImpliedVol:       &iv,
		UnderlyingTicker: "XYZ",
	}}
	s := Store{Root: t.TempDir()}
	k := Key{Source: "massive", Symbol: "XYZ", Label: DateLabel(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))}

	if err := Write(s, k, rows); err != nil {
		t.Fatal(err)
	}
	got, err := Read[model.OptionRow](s, k)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("read %d rows, want 1", len(got))
	}
	if got[0].Ticker != rows[0].Ticker || got[0].ImpliedVol == nil || *got[0].ImpliedVol != iv {
		t.Errorf("option row mismatch: %+v", got[0])
	}
	if got[0].Delta != nil {
		t.Errorf("absent optional column came back non-nil: %v", *got[0].Delta)
	}
}
