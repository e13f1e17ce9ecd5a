// 12 Oct 2026

/*
Seqcons improves the multiple alignment of reads on contigs and
writes a new consensus for each contig.

Usage:

	seqcons [flags] --reads file.fa --outfile out.afg
	seqcons [flags] --afg layout.afg --outfile out.sam
	seqcons [flags] --sam aln.sam [--contigs ref.fa] --outfile out.seqan

Exactly one of --reads, --afg and --sam is needed. Flags can have one
or two dashes.

Reads in a FASTA or FASTQ file may say where they go in their
comment line, like

	>read17 130,80 contig=chr2

which puts the read reverse complemented between columns 80 and 130
of contig chr2. Reads without a contig go on one called "contig".
Positions only have to be roughly right.

The output format comes from the name of the output file. .seqan is
a tab separated layout, .afg is AMOS messages, .sam is SAM plus a
file ending .consensus.fasta with the consensus sequences. .fa or
.fasta writes only the consensus sequences.

The flags are:

	-method realign|msa
		realign starts from the layout we were given. msa throws it
		away and builds one from read overlaps.
	-bandwidth N
		how far a read may move each pass (default 8)
	-rmethod gotoh|nw
		affine or linear gap penalties
	-include
		count the contig sequence as a read that never moves
	-iter N
		stop after N passes, even if reads are still moving
	-matchlength, -quality, -overlaps, -window
		only for msa. Two reads must share a word of matchlength
		bases (or have starts within window of each other) and
		overlap with quality percent identity. At most overlaps of
		these are kept per read.
	-threads N
		realign N contigs at once
	-workers N
		align reads within one contig with N goroutines
	-submat file
		substitution matrix, letters on the first line then one row
		per letter. Without it bases score 1 or -2, and reads that
		look like protein get BLOSUM62
	-v N
		1 shows progress, 2 shows every pass
	-profile cpu|mem
		write a profile to the current directory

The exit code is 0 on success and 1 if anything went wrong, be it a
silly flag value or trouble reading, realigning or writing.
*/
package main
