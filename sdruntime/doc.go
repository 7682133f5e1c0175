// Package sdruntime is the text-to-image runtime used by sdgen.
//
// It defines the Backend and Pipeline seam, the parameter rules the model
// imposes (dimensions divisible by 8, bounded steps and guidance), prompt
// normalization, and pixel/PNG helpers. The diffusion work itself is done by
// stable-diffusion.cpp through CGo when built with -tags sd.
//
// Typical use:
//
//	backend := sdruntime.DefaultBackend()
//	pipe, err := backend.Load(ctx, sdruntime.LoadOptions{
//	    ModelDir:  snapshotDir,
//	    Precision: sdruntime.Float16,
//	})
//	if err != nil {
//	    return err
//	}
//	defer pipe.Close()
//
//	if err := pipe.To(sdruntime.DeviceCUDA); err != nil {
//	    return err
//	}
//	img, err := pipe.Generate(ctx, sdruntime.GenerateParams{
//	    Prompt:   "a sunset over mountains",
//	    Width:    512,
//	    Height:   512,
//	    Steps:    sdruntime.DefaultSteps,
//	    CFGScale: 7.5,
//	    Seed:     -1,
//	})
//
// Errors wrap the sentinels in errors.go; match them with errors.Is.
package sdruntime
