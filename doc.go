// Package wordbeamsearch provides a word beam search decoder for CTC
// (Connectionist Temporal Classification) output.
//
// The decoder turns a per-timestep probability matrix produced by a
// sequence classifier (handwriting or speech recognition) into a
// character string, constrained by a dictionary trie and optionally
// re-ranked by a unigram/bigram word-level language model.
//
// The core packages are label (codepoint/label bijection), dictionary
// (the prefix tree dictionary), langmodel (unigram/bigram scoring),
// beam (beam hypotheses and their aggregation) and decoder (the search
// loop tying them together). matrix, metrics, dataset and batch provide
// the supporting tensor, evaluation, corpus-loading and parallel-batch
// infrastructure used by the cmd/ drivers.
package wordbeamsearch
