// Package refid reconciles a canonical per-record reference identifier from
// the model's extracted reference text and the source filename.
//
// Filename-derived digit runs are the highest-confidence source because the
// scanning provider embeds the reference in its own filename convention; they
// override the model's reference whenever present. When neither source
// yields a candidate a GEN- prefixed token is synthesized so generated and
// authentic identifiers stay visually distinguishable. The synthesis path is
// intentionally non-deterministic; everything else is idempotent.
package refid
