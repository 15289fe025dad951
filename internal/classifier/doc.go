// Package classifier turns a four-feature weather reading into a weather label.
//
// # Feature Vector
//
// Every model consumes exactly one sample of four numbers in this order:
//
//	[precipitation, temp_max, temp_min, wind]
//
// The order is not checked at prediction time; a model trained on a
// different column order still produces labels, just wrong ones. Artifacts
// that carry "feature_names" are rejected at load time unless the names
// match the order above.
//
// # Model Artifact
//
// A file-backed model is a JSON document selected by "kind":
//
//	{
//	  "kind": "linear" | "svc",
//	  "classes": ["drizzle", "fog", "rain", "snow", "sun"],
//	  "feature_names": ["precipitation", "temp_max", "temp_min", "wind"],
//	  "scaler": {"mean": [m0, m1, m2, m3], "scale": [s0, s1, s2, s3]}
//	}
//
// The optional scaler standardizes the sample as (x - mean) / scale before
// the model sees it.
//
// Linear models add "coef" (one row of four weights per class) and
// "intercept" (one per row). The label with the highest score wins, lowest
// class index on ties. With two classes a single row is allowed: a positive
// score selects classes[1], anything else classes[0].
//
// Kernel SVC models add "kernel" (linear, rbf, poly, sigmoid), "gamma",
// "coef0", "degree" (required for poly, ignored otherwise), "support_vectors" (n rows of four), "n_support" (support
// vector count per class, in class order), "dual_coef" ((k-1) rows of n) and
// "intercept" (k(k-1)/2 values, one per class pair). Classification is
// one-vs-one voting in the libsvm layout: for each pair i<j the decision is
//
//	sum(dual_coef[j-1][sv in i] * K(sv, x)) + sum(dual_coef[i][sv in j] * K(sv, x)) + intercept[p]
//
// and a positive decision is a vote for i, otherwise for j. The class with
// the most votes wins, lowest class index on ties.
//
// # Remote Model Server
//
// RemoteClassifier posts {"features": [[p, tmax, tmin, wind]]} to
// {ML_SERVICE_URL}/predict and expects {"predictions": ["label"]} back.
package classifier
