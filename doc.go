// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

// Package selvar selects sparse lag structures for multivariate time series.
//
// For every ordered pair of variables (i, j) Run decides whether past values
// of i help predict the current value of j, and at which lag. Each target is
// searched independently by greedy hill climbing over predictor sets: a move
// adds a source at some lag, removes it, or moves it to another lag, and the
// move with the lowest predicted residual sum of squares (PRSS) is committed
// while it strictly improves. PRSS is the leave-one-out PRESS of ordinary
// least-squares fits with intercept, summed over batches of consecutive
// timepoints.
//
// Every selected link is then scored with a likelihood-ratio test of the
// model with and without it, and its chi-squared p-value is Bonferroni
// corrected for the N(N-1) ordered pairs.
//
// The p-values are naive. The links were chosen on the same data they are
// tested on, so the values are optimistic; use them to rank links, never to
// formally test edge presence.
//
// A minimal run:
//
//	res, err := selvar.Run(ctx, data, selvar.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	for _, l := range res.Links() {
//		fmt.Println(l.SourceName, "->", l.TargetName, l.Lag, l.PValue)
//	}
package selvar
