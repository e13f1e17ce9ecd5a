// 12 Oct 2026

/*
Simreads makes a random genome and samples reads from it, for testing
seqcons.

Usage:

	simreads [flags]

Each read has its position in the comment line, "begin,end", with
begin > end for reads from the reverse strand. The positions are off
by up to -j bases, since that is what the realigner has to fix.

Flags:

	-n	number of reads
	-l	read length, before insertions and deletions
	-g	genome length
	-s	random number seed
	-sub, -ins, -del
		rates of errors per base
	-j	jitter in the reported positions
	-r	fraction of reads from the reverse strand
	-t	evenly spaced reads, not random
	-c	contig name to put in each comment line
	-o	output file, standard output if not given
	-genome
		file for the genome as FASTA
*/
package main
