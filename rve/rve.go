// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package rve implements the computational homogenisation (FE²) of representative volume
// elements. Each macroscopic integration point owns an Instance cloned from a Template;
// the macroscopic deformation gradient is imposed on the boundary, the nested problem is solved
// and the boundary forces are averaged into stresses and tangent moduli.
//
//  Typical cycle at a macro point:
//
//      m.Stress(F)   =>  ApplyMacroDeformation → Solve → AveragedCauchyStress → MicroEnergy
//      m.Tangent(F)  =>  AveragedTangent (requires the stress of the same F)
//      m.Update()    =>  commit
//
package rve
