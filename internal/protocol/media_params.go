package protocol

// Media type bitmask declared in the media handshake.
const (
	MediaTypeAudio       = 1 << 0
	MediaTypeVideo       = 1 << 1
	MediaTypeScreenShare = 1 << 2
	MediaTypeTranscript  = 1 << 3
	MediaTypeChat        = 1 << 4

	MediaTypeAll = MediaTypeAudio | MediaTypeVideo | MediaTypeScreenShare |
		MediaTypeTranscript | MediaTypeChat
)

// Audio negotiation enums.
const (
	AudioContentTypeRaw    = 2
	AudioSampleRate16K     = 1
	AudioChannelMono       = 1
	AudioCodecL16          = 1
	AudioDataOptMixed      = 2
	AudioFrameIntervalMs20 = 20
)

// Video negotiation enums.
const (
	VideoCodecH264        = 7
	VideoResolutionHD     = 2
	VideoDataOptActiveUni = 3
)

// Screen share negotiation enums.
const (
	ShareCodecJPG = 5
)

type AudioParams struct {
	ContentType int `json:"content_type"`
	SampleRate  int `json:"sample_rate"`
	Channel     int `json:"channel"`
	Codec       int `json:"codec"`
	DataOpt     int `json:"data_opt"`
	Duration    int `json:"duration"`
}

type VideoParams struct {
	Codec      int `json:"codec"`
	Resolution int `json:"resolution"`
	FPS        int `json:"fps"`
	DataOpt    int `json:"data_opt"`
}

type ShareParams struct {
	Codec int `json:"codec"`
	FPS   int `json:"fps"`
}

type MediaParams struct {
	Audio *AudioParams `json:"audio,omitempty"`
	Video *VideoParams `json:"video,omitempty"`
	Share *ShareParams `json:"deskshare,omitempty"`
}

// DefaultMediaParams returns the fixed negotiated profiles: mono 16 kHz raw
// PCM mixed stream, H.264 HD restricted to the active speaker, and a 1 fps
// JPG still-image profile for screen share. Chat and transcript are plain
// text and need no parameter block.
func DefaultMediaParams() MediaParams {
	return MediaParams{
		Audio: &AudioParams{
			ContentType: AudioContentTypeRaw,
			SampleRate:  AudioSampleRate16K,
			Channel:     AudioChannelMono,
			Codec:       AudioCodecL16,
			DataOpt:     AudioDataOptMixed,
			Duration:    AudioFrameIntervalMs20,
		},
		Video: &VideoParams{
			Codec:      VideoCodecH264,
			Resolution: VideoResolutionHD,
			FPS:        25,
			DataOpt:    VideoDataOptActiveUni,
		},
		Share: &ShareParams{
			Codec: ShareCodecJPG,
			FPS:   1,
		},
	}
}
