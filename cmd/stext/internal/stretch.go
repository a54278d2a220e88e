package internal

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/goplus/stext/stretch"
)

var (
	stretchTempo    float64
	stretchPitch    float64
	stretchRate     float64
	stretchNoSpeech bool
)

var stretchCmd = &cobra.Command{
	Use:   "stretch <input> <output>",
	Short: "Change the tempo of an audio file",
	Long: `Stretch reads a WAV or MP3 file, changes its tempo by --tempo percent
without changing the pitch and writes the result as WAV. --pitch and --rate
shift the pitch in semitones and change the playback rate in percent.`,
	Args: cobra.ExactArgs(2),
	RunE: runStretch,
}

func init() {
	stretchCmd.Flags().Float64VarP(&stretchTempo, "tempo", "t", 0, "Tempo change in percent, -90 to 900")
	stretchCmd.Flags().Float64VarP(&stretchPitch, "pitch", "p", 0, "Pitch change in semitones, -36 to 36")
	stretchCmd.Flags().Float64VarP(&stretchRate, "rate", "r", 0, "Playback rate change in percent, -90 to 900")
	stretchCmd.Flags().BoolVar(&stretchNoSpeech, "no-speech", false, "Use automatic stretch settings instead of the speech ones")
	rootCmd.AddCommand(stretchCmd)
}

func runStretch(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var out []byte
	if tempo := int(stretchTempo); float64(tempo) == stretchTempo &&
		stretchPitch == 0 && stretchRate == 0 && !stretchNoSpeech {
		out, err = stretch.Stretch(data, tempo)
	} else {
		out, err = stretch.Process(data, stretch.Options{
			TempoChange:    stretchTempo,
			PitchSemiTones: stretchPitch,
			RateChange:     stretchRate,
			Speech:         !stretchNoSpeech,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to stretch %s: %w", args[0], err)
	}
	if err := os.WriteFile(args[1], out, 0o644); err != nil {
		return err
	}
	glog.Infof("wrote %s (%d bytes)", args[1], len(out))
	return nil
}
