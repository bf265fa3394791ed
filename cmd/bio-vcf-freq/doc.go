/*Command bio-vcf-freq computes per-group alternate-allele frequencies
  from a VCF file.  Samples are assigned to groups by a tab-separated
  grouping table whose header names one or more grouping schemes; the
  output has one row per variant with a <scheme>_<group>_freq /
  <scheme>_<group>_count column pair for every group.  The VCF may be
  gzip-compressed (detected from the stream contents).

  Usage: bio-vcf-freq -vcf cohort.vcf.gz -groups populations.tsv -output freqs.tsv
*/
package main
