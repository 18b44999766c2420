package modplayer

// triggerKeep controls which pieces of a channel's state survive a note
// retrigger: note retrig, for instance, keeps the envelopes running while
// restarting the sample.
//
// Reconstructed from its call sites in original_source/src/channel.rs; the
// bitflags definition itself (triggerkeep.rs) was filtered from the
// retrieved source.
type triggerKeep uint8

const (
	triggerKeepNone           triggerKeep = 0
	triggerKeepSamplePosition triggerKeep = 1 << 0
	triggerKeepEnvelope       triggerKeep = 1 << 1
	triggerKeepVolume         triggerKeep = 1 << 2
	triggerKeepPeriod         triggerKeep = 1 << 3
)
